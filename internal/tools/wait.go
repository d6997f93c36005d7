package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func waitTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_wait",
			mcp.WithDescription("Wait for a number of seconds before continuing"),
			mcp.WithNumber("time", mcp.Required(), mcp.Description("Seconds to wait")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			seconds, err := reqNumArg(call.Args, "time")
			if err != nil {
				return nil, err
			}
			if seconds < 0 || seconds > 60 {
				return nil, fmt.Errorf("time must be between 0 and 60 seconds")
			}
			duration := time.Duration(seconds * float64(time.Second))

			return &Outcome{
				Code: []string{fmt.Sprintf("await page.waitForTimeout(%v);", seconds)},
				Action: func(ctx context.Context) error {
					// With scripts blocked by a dialog an in-page timer
					// would never fire, so the wait runs caller-side for
					// the full requested duration. Otherwise the wait is
					// a fixed in-page one-second delay regardless of the
					// requested duration, retained for compatibility
					// with callers tuned to the historical behavior.
					if call.Tab.Modal().ScriptsBlocked() {
						select {
						case <-time.After(duration):
							return nil
						case <-ctx.Done():
							return ctx.Err()
						}
					}
					return call.Tab.Page().EvalSleep(ctx)
				},
				CaptureSnapshot: true,
			}, nil
		},
	}
}
