package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func evaluateTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_evaluate",
			mcp.WithDescription("Evaluate a JavaScript expression or function on the page and return the result"),
			mcp.WithString("function", mcp.Required(), mcp.Description("Expression or () => ... function body")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			js, err := reqStrArg(call.Args, "function")
			if err != nil {
				return nil, err
			}
			if call.Tab.Modal().ScriptsBlocked() {
				return nil, fmt.Errorf("page scripts are blocked by an open dialog; handle it first")
			}

			outcome := &Outcome{
				Code:            []string{fmt.Sprintf("await page.evaluate(%s);", js)},
				CaptureSnapshot: true,
			}
			outcome.Action = func(ctx context.Context) error {
				result, err := call.Tab.Page().Eval(ctx, js)
				if err != nil {
					return err
				}
				outcome.Text = append(outcome.Text, "### Result", result)
				return nil
			}
			return outcome, nil
		},
	}
}

func resizeTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_resize",
			mcp.WithDescription("Resize the page viewport"),
			mcp.WithNumber("width", mcp.Required(), mcp.Description("Viewport width in pixels")),
			mcp.WithNumber("height", mcp.Required(), mcp.Description("Viewport height in pixels")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			width, err := reqNumArg(call.Args, "width")
			if err != nil {
				return nil, err
			}
			height, err := reqNumArg(call.Args, "height")
			if err != nil {
				return nil, err
			}
			if width < 1 || height < 1 {
				return nil, fmt.Errorf("viewport dimensions must be positive")
			}
			return &Outcome{
				Text: []string{fmt.Sprintf("Resized viewport to %dx%d", int(width), int(height))},
				Code: []string{fmt.Sprintf("await page.setViewportSize({ width: %d, height: %d });", int(width), int(height))},
				Action: func(ctx context.Context) error {
					if err := call.Tab.Page().Resize(int(width), int(height)); err != nil {
						return err
					}
					// Reflow can shuffle the tree; snapshot after it settles.
					call.Tab.Page().WaitStable(ctx)
					return nil
				},
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func closeTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_close",
			mcp.WithDescription("Close the browser and end the session"),
		),
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			return &Outcome{
				Text: []string{"Browser closed"},
				Action: func(ctx context.Context) error {
					return call.Session.Close()
				},
			}, nil
		},
	}
}
