package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func consoleMessagesTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_console_messages",
			mcp.WithDescription("Return console messages logged since the last navigation"),
			mcp.WithString("level", mcp.Description("Only messages of this level: log, info, warn or error")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			level := strArg(call.Args, "level")

			var lines []string
			for _, msg := range call.Tab.Console() {
				if level != "" && msg.Level != level {
					continue
				}
				lines = append(lines, fmt.Sprintf("[%s] %s", strings.ToUpper(msg.Level), msg.Text))
			}
			if len(lines) == 0 {
				return &Outcome{Text: []string{"No console messages"}}, nil
			}
			return &Outcome{Text: lines}, nil
		},
	}
}

func networkRequestsTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_network_requests",
			mcp.WithDescription("Return network requests made since the last navigation, most recent last"),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			requests := call.Tab.Requests()
			if len(requests) == 0 {
				return &Outcome{Text: []string{"No network requests"}}, nil
			}
			lines := make([]string, 0, len(requests))
			for _, req := range requests {
				lines = append(lines, fmt.Sprintf("[%s] %s %s", req.Status, req.Method, req.URL))
			}
			return &Outcome{Text: lines}, nil
		},
	}
}
