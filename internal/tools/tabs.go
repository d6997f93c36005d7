package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func tabListTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_tab_list",
			mcp.WithDescription("List the open browser tabs"),
		),
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			lines := call.Session.DescribeTabs()
			if len(lines) == 0 {
				return &Outcome{Text: []string{"No tabs open"}}, nil
			}
			return &Outcome{Text: []string{"### Open tabs", strings.Join(lines, "\n")}}, nil
		},
	}
}

func tabNewTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_tab_new",
			mcp.WithDescription("Open a new tab and make it current"),
			mcp.WithString("url", mcp.Description("URL to open; blank page when omitted")),
		),
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			url := strArg(call.Args, "url")
			return &Outcome{
				Code: []string{fmt.Sprintf("const page = await context.newPage(); await page.goto(%q);", url)},
				Action: func(ctx context.Context) error {
					_, err := call.Session.NewTab(ctx, url)
					return err
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func tabSelectTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_tab_select",
			mcp.WithDescription("Switch to a tab by its 1-based index"),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Tab index as shown by browser_tab_list")),
		),
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			index, err := reqNumArg(call.Args, "index")
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Text: []string{fmt.Sprintf("Selected tab %d", int(index))},
				Action: func(ctx context.Context) error {
					_, err := call.Session.SelectTab(int(index))
					return err
				},
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func tabCloseTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_tab_close",
			mcp.WithDescription("Close a tab; the current one when no index is given"),
			mcp.WithNumber("index", mcp.Description("1-based tab index to close")),
		),
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			index, _ := numArg(call.Args, "index")
			return &Outcome{
				Text: []string{"Closed tab"},
				Action: func(ctx context.Context) error {
					return call.Session.CloseTab(int(index))
				},
				CaptureSnapshot: true,
			}, nil
		},
	}
}
