package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/pagepilot/pkg/browser"
)

// refDescription is shared by every element-taking tool so callers
// learn the contract once.
const refDescription = "Exact element reference from the page snapshot, e.g. e3 or f1e12"

func snapshotTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_snapshot",
			mcp.WithDescription("Capture an accessibility snapshot of the current page. Better than a screenshot for driving interactions."),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			return &Outcome{CaptureSnapshot: true}, nil
		},
	}
}

func clickTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_click",
			mcp.WithDescription("Click an element on the page"),
			mcp.WithString("ref", mcp.Required(), mcp.Description(refDescription)),
			mcp.WithString("element", mcp.Description("Human-readable element description")),
			mcp.WithString("button", mcp.Description("Mouse button: left, right or middle"), mcp.Enum("left", "right", "middle")),
			mcp.WithBoolean("doubleClick", mcp.Description("Double click instead of single")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			ref, err := reqStrArg(call.Args, "ref")
			if err != nil {
				return nil, err
			}
			opts := browser.ClickOpts{
				Button:      strArg(call.Args, "button"),
				DoubleClick: boolArg(call.Args, "doubleClick"),
			}

			transcript := fmt.Sprintf("await page.getByRef(%q).click();", ref)
			if opts.DoubleClick {
				transcript = fmt.Sprintf("await page.getByRef(%q).dblclick();", ref)
			}
			return &Outcome{
				Code: []string{transcript},
				Action: func(ctx context.Context) error {
					el, err := call.Tab.Store().Resolve(ctx, ref)
					if err != nil {
						return err
					}
					return call.Tab.Page().Click(ctx, el, opts)
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func typeTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_type",
			mcp.WithDescription("Type text into an editable element"),
			mcp.WithString("ref", mcp.Required(), mcp.Description(refDescription)),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to type")),
			mcp.WithBoolean("slowly", mcp.Description("Type one character at a time, triggering per-key handlers")),
			mcp.WithBoolean("submit", mcp.Description("Press Enter after typing")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			ref, err := reqStrArg(call.Args, "ref")
			if err != nil {
				return nil, err
			}
			text, ok := call.Args["text"].(string)
			if !ok {
				return nil, fmt.Errorf("missing required argument %q", "text")
			}
			opts := browser.TypeOpts{
				Slowly: boolArg(call.Args, "slowly"),
				Submit: boolArg(call.Args, "submit"),
			}

			code := []string{fmt.Sprintf("await page.getByRef(%q).fill(%q);", ref, text)}
			if opts.Submit {
				code = append(code, `await page.keyboard.press("Enter");`)
			}
			return &Outcome{
				Code: code,
				Action: func(ctx context.Context) error {
					el, err := call.Tab.Store().Resolve(ctx, ref)
					if err != nil {
						return err
					}
					return call.Tab.Page().Type(ctx, el, text, opts)
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func hoverTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_hover",
			mcp.WithDescription("Hover the pointer over an element"),
			mcp.WithString("ref", mcp.Required(), mcp.Description(refDescription)),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			ref, err := reqStrArg(call.Args, "ref")
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Code: []string{fmt.Sprintf("await page.getByRef(%q).hover();", ref)},
				Action: func(ctx context.Context) error {
					el, err := call.Tab.Store().Resolve(ctx, ref)
					if err != nil {
						return err
					}
					return call.Tab.Page().Hover(ctx, el)
				},
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func dragTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_drag",
			mcp.WithDescription("Drag one element onto another"),
			mcp.WithString("startRef", mcp.Required(), mcp.Description("Reference of the element to drag")),
			mcp.WithString("endRef", mcp.Required(), mcp.Description("Reference of the drop target")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			startRef, err := reqStrArg(call.Args, "startRef")
			if err != nil {
				return nil, err
			}
			endRef, err := reqStrArg(call.Args, "endRef")
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Code: []string{fmt.Sprintf("await page.getByRef(%q).dragTo(page.getByRef(%q));", startRef, endRef)},
				Action: func(ctx context.Context) error {
					from, err := call.Tab.Store().Resolve(ctx, startRef)
					if err != nil {
						return err
					}
					to, err := call.Tab.Store().Resolve(ctx, endRef)
					if err != nil {
						return err
					}
					return call.Tab.Page().Drag(ctx, from, to)
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func selectOptionTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_select_option",
			mcp.WithDescription("Select one or more options in a dropdown by visible text"),
			mcp.WithString("ref", mcp.Required(), mcp.Description(refDescription)),
			mcp.WithArray("values", mcp.Required(), mcp.Description("Option labels to select"), mcp.WithStringItems()),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			ref, err := reqStrArg(call.Args, "ref")
			if err != nil {
				return nil, err
			}
			values := strSliceArg(call.Args, "values")
			if len(values) == 0 {
				return nil, fmt.Errorf("missing required argument %q", "values")
			}
			return &Outcome{
				Code: []string{fmt.Sprintf("await page.getByRef(%q).selectOption(%q);", ref, values)},
				Action: func(ctx context.Context) error {
					el, err := call.Tab.Store().Resolve(ctx, ref)
					if err != nil {
						return err
					}
					return call.Tab.Page().SelectOption(ctx, el, values)
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}

func pressKeyTool() Tool {
	return Tool{
		Def: mcp.NewTool("browser_press_key",
			mcp.WithDescription("Press a keyboard key, e.g. Enter, Tab, ArrowDown or a single character"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Key name to press")),
		),
		NeedsTab: true,
		Handler: func(ctx context.Context, call *Call) (*Outcome, error) {
			key, err := reqStrArg(call.Args, "key")
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Code: []string{fmt.Sprintf("await page.keyboard.press(%q);", key)},
				Action: func(ctx context.Context) error {
					return call.Tab.Page().PressKey(ctx, key)
				},
				WaitForNetwork:  true,
				CaptureSnapshot: true,
			}, nil
		},
	}
}
