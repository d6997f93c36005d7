package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func navigateTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_navigate",
			mcp.WithDescription("Navigate the current tab to a URL, opening a tab if none is open"),
			mcp.WithString("url", mcp.Required(), mcp.Description("The URL to navigate to")),
		),
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			url, err := reqStrArg(call.Args, "url")
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Code: []string{fmt.Sprintf("await page.goto(%q);", url)},
				Action: func(ctx context.Context) error {
					_, err := call.Session.NavigateCurrent(ctx, url)
					return err
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func navigateBackTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_navigate_back",
			mcp.WithDescription("Go back to the previous page in session history"),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			return &Outcome{
				Code: []string{"await page.goBack();"},
				Action: func(ctx context.Context) error {
					return call.Tab.Page().NavigateBack(ctx)
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func navigateForwardTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_navigate_forward",
			mcp.WithDescription("Go forward to the next page in session history"),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			return &Outcome{
				Code: []string{"await page.goForward();"},
				Action: func(ctx context.Context) error {
					return call.Tab.Page().NavigateForward(ctx)
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}
