package tools

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// describeScroll names the direction and magnitude of a scroll delta,
// one clause per axis.
func describeScroll(dx, dy float64) string {
	var parts []string
	if dy > 0 {
		parts = append(parts, fmt.Sprintf("down by %d pixels", int(dy)))
	} else if dy < 0 {
		parts = append(parts, fmt.Sprintf("up by %d pixels", int(math.Abs(dy))))
	}
	if dx > 0 {
		parts = append(parts, fmt.Sprintf("right by %d pixels", int(dx)))
	} else if dx < 0 {
		parts = append(parts, fmt.Sprintf("left by %d pixels", int(math.Abs(dx))))
	}
	if len(parts) == 0 {
		return "Scrolled nowhere: both deltas were zero"
	}
	return "Scrolled " + strings.Join(parts, " and ")
}

func scrollTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_scroll",
			mcp.WithDescription("Scroll the page by a pixel delta. Positive y scrolls down, positive x scrolls right."),
			mcp.WithNumber("x", mcp.Description("Horizontal delta in pixels")),
			mcp.WithNumber("y", mcp.Description("Vertical delta in pixels")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			dx, _ := numArg(call.Args, "x")
			dy, _ := numArg(call.Args, "y")
			return &Outcome{
				Text: []string{describeScroll(dx, dy)},
				Code: []string{fmt.Sprintf("await page.mouse.wheel(%v, %v);", dx, dy)},
				Action: func(ctx context.Context) error {
					return call.Tab.Page().ScrollBy(ctx, dx, dy)
				},
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func scrollToTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_scroll_to",
			mcp.WithDescription("Scroll the page to an absolute position"),
			mcp.WithNumber("x", mcp.Required(), mcp.Description("Horizontal position in pixels")),
			mcp.WithNumber("y", mcp.Required(), mcp.Description("Vertical position in pixels")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			x, err := reqNumArg(call.Args, "x")
			if err != nil {
				return nil, err
			}
			y, err := reqNumArg(call.Args, "y")
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Text: []string{fmt.Sprintf("Scrolled to position x=%d, y=%d", int(x), int(y))},
				Code: []string{fmt.Sprintf("await page.evaluate(() => window.scrollTo(%v, %v));", x, y)},
				Action: func(ctx context.Context) error {
					return call.Tab.Page().ScrollTo(ctx, x, y)
				},
				CaptureSnapshot: true,
			}, nil
		},
	}
}
