package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// ClickOpts adjusts mouse button and click count.
type ClickOpts struct {
	Button      string
	DoubleClick bool
}

// TypeOpts adjusts how text entry behaves.
type TypeOpts struct {
	Slowly bool
	Submit bool
}

// Click clicks a resolved element.
func (p *Page) Click(ctx context.Context, el *rod.Element, opts ClickOpts) error {
	button := proto.InputMouseButtonLeft
	switch opts.Button {
	case "right":
		button = proto.InputMouseButtonRight
	case "middle":
		button = proto.InputMouseButtonMiddle
	}

	clickCount := 1
	if opts.DoubleClick {
		clickCount = 2
	}
	return el.Context(ctx).Click(button, clickCount)
}

// Type focuses an element and enters text.
func (p *Page) Type(ctx context.Context, el *rod.Element, text string, opts TypeOpts) error {
	el = el.Context(ctx)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("focus element: %w", err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}

	if opts.Slowly {
		for _, ch := range text {
			if err := el.Input(string(ch)); err != nil {
				return fmt.Errorf("type text: %w", err)
			}
			time.Sleep(50 * time.Millisecond)
		}
	} else if err := el.Input(text); err != nil {
		return fmt.Errorf("type text: %w", err)
	}

	if opts.Submit {
		return p.page.Keyboard.Press(input.Enter)
	}
	return nil
}

// Hover moves the pointer over an element.
func (p *Page) Hover(ctx context.Context, el *rod.Element) error {
	return el.Context(ctx).Hover()
}

// Drag performs a pointer drag from one element to another.
func (p *Page) Drag(ctx context.Context, from, to *rod.Element) error {
	start, err := from.Context(ctx).Shape()
	if err != nil {
		return fmt.Errorf("drag source shape: %w", err)
	}
	end, err := to.Context(ctx).Shape()
	if err != nil {
		return fmt.Errorf("drag target shape: %w", err)
	}
	a := start.OnePointInside()
	b := end.OnePointInside()
	if a == nil || b == nil {
		return fmt.Errorf("drag endpoints are not visible")
	}

	mouse := p.page.Context(ctx).Mouse
	if err := mouse.MoveTo(*a); err != nil {
		return err
	}
	if err := mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := mouse.MoveLinear(*b, 10); err != nil {
		return err
	}
	return mouse.Up(proto.InputMouseButtonLeft, 1)
}

// SelectOption selects dropdown options by visible text.
func (p *Page) SelectOption(ctx context.Context, el *rod.Element, values []string) error {
	return el.Context(ctx).Select(values, true, rod.SelectorTypeText)
}

// PressKey presses one keyboard key on the page.
func (p *Page) PressKey(ctx context.Context, key string) error {
	return p.page.Context(ctx).Keyboard.Press(mapKey(key))
}

// ScrollBy scrolls the page by a pixel delta.
func (p *Page) ScrollBy(ctx context.Context, dx, dy float64) error {
	return p.page.Context(ctx).Mouse.Scroll(dx, dy, 1)
}

// ScrollTo scrolls the document to absolute coordinates.
func (p *Page) ScrollTo(ctx context.Context, x, y float64) error {
	_, err := p.page.Context(ctx).Eval(`(x, y) => window.scrollTo(x, y)`, x, y)
	return err
}

// ScrollIntoView brings an element into the viewport.
func (p *Page) ScrollIntoView(ctx context.Context, el *rod.Element) error {
	return el.Context(ctx).ScrollIntoView()
}

// Upload sets files on a file input element directly, bypassing the
// native chooser.
func (p *Page) Upload(ctx context.Context, el *rod.Element, paths []string) error {
	return el.Context(ctx).SetFiles(paths)
}

// WaitStable waits for the page layout to stop changing.
func (p *Page) WaitStable(ctx context.Context) {
	_ = p.page.Context(ctx).WaitStable(300 * time.Millisecond)
}

func mapKey(key string) input.Key {
	switch key {
	case "Enter":
		return input.Enter
	case "Tab":
		return input.Tab
	case "Escape":
		return input.Escape
	case "Backspace":
		return input.Backspace
	case "Delete":
		return input.Delete
	case "ArrowUp":
		return input.ArrowUp
	case "ArrowDown":
		return input.ArrowDown
	case "ArrowLeft":
		return input.ArrowLeft
	case "ArrowRight":
		return input.ArrowRight
	case "Home":
		return input.Home
	case "End":
		return input.End
	case "PageUp":
		return input.PageUp
	case "PageDown":
		return input.PageDown
	case "Space":
		return input.Space
	default:
		if len(key) == 1 {
			return input.Key(key[0])
		}
		return input.Enter
	}
}
