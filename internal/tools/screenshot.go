package tools

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/pagepilot/pkg/browser"
)

// screenshotMaxWidth bounds returned images so results stay small
// enough for model context windows.
const screenshotMaxWidth = 1280

func takeScreenshotTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_take_screenshot",
			mcp.WithDescription("Take a screenshot of the page or a single element. Prefer browser_snapshot for driving interactions."),
			mcp.WithBoolean("fullPage", mcp.Description("Capture the whole scrollable page instead of the viewport")),
			mcp.WithString("ref", mcp.Description("Element reference to capture instead of the page")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			fullPage := boolArg(call.Args, "fullPage")
			ref := strArg(call.Args, "ref")

			var data []byte
			var err error
			if ref != "" {
				el, rerr := call.Tab.Store().Resolve(ctx, ref)
				if rerr != nil {
					return nil, rerr
				}
				data, err = el.Screenshot(proto.PageCaptureScreenshotFormatJpeg, 80)
			} else {
				data, err = call.Tab.Page().Screenshot(fullPage)
			}
			if err != nil {
				return nil, fmt.Errorf("take screenshot: %w", err)
			}

			small, err := browser.ShrinkScreenshot(data, screenshotMaxWidth)
			if err != nil {
				return nil, err
			}

			return &Outcome{
				ResultOverride: mcp.NewToolResultImage(
					"Screenshot captured",
					base64.StdEncoding.EncodeToString(small),
					"image/jpeg",
				),
			}, nil
		},
	}
}
