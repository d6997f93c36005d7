package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/pagepilot/internal/config"
)

func traceStartTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_trace_start",
			mcp.WithDescription("Start recording a performance trace of the current page"),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			if call.Tab.Page().Tracing() {
				return nil, fmt.Errorf("a trace is already being recorded")
			}
			if err := call.Tab.Page().StartTrace(ctx); err != nil {
				return nil, err
			}
			return &Outcome{
				Text: []string{"Trace recording started. Use browser_trace_stop to save it."},
			}, nil
		},
	}
}

func traceStopTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_trace_stop",
			mcp.WithDescription("Stop the trace recording and write it as a zip archive"),
			mcp.WithString("name", mcp.Description("Archive name without extension; configured default when omitted")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			if !call.Tab.Page().Tracing() {
				return nil, fmt.Errorf("no trace is being recorded")
			}
			name := strArg(call.Args, "name")
			if name == "" {
				name = call.Config.Output.TraceName
			}
			name = config.NormalizeArtifactName(name)

			path, err := call.Tab.Page().StopTrace(ctx, call.Config.Output.TraceDir, name)
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Text: []string{fmt.Sprintf("Trace saved to %s", path)},
			}, nil
		},
	}
}
