package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// networkIdleGrace is how long the network must stay quiet before a
// quiescence wait is considered satisfied.
const networkIdleGrace = 500 * time.Millisecond

// Listeners receives page events. All callbacks fire on rod's event
// goroutine; receivers do their own locking.
type Listeners struct {
	OnConsole     func(ConsoleMessage)
	OnRequest     func(id string, entry RequestEntry)
	OnResponse    func(id string, status string)
	OnDialog      func(DialogInfo)
	OnFileChooser func(FileChooserInfo)
	OnNavigated   func(url string) // top-level navigations only
}

// Page wraps one rod page, adding event plumbing and the driver
// primitives tools need.
type Page struct {
	page   *rod.Page
	logger *slog.Logger

	mu          sync.Mutex
	fileChooser *proto.PageFileChooserOpened
	video       *VideoRecorder
	tracing     bool
}

func newPage(p *rod.Page, logger *slog.Logger) *Page {
	return &Page{page: p, logger: logger}
}

// TargetID identifies the page within the browser.
func (p *Page) TargetID() string {
	return string(p.page.TargetID)
}

// Attach subscribes the listeners to page events. Call once, before
// the page is used by tools.
func (p *Page) Attach(l Listeners) {
	if l.OnFileChooser != nil {
		_ = proto.PageSetInterceptFileChooserDialog{Enabled: true}.Call(p.page)
	}

	go p.page.EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			if l.OnConsole != nil {
				l.OnConsole(formatConsoleMessage(e))
			}
		},
		func(e *proto.NetworkRequestWillBeSent) {
			if l.OnRequest != nil && e.Request != nil {
				l.OnRequest(string(e.RequestID), RequestEntry{
					Method: e.Request.Method,
					URL:    e.Request.URL,
					Status: "pending",
				})
			}
		},
		func(e *proto.NetworkResponseReceived) {
			if l.OnResponse != nil && e.Response != nil {
				l.OnResponse(string(e.RequestID), strconv.Itoa(e.Response.Status))
			}
		},
		func(e *proto.PageJavascriptDialogOpening) {
			if l.OnDialog != nil {
				l.OnDialog(DialogInfo{
					Kind:          string(e.Type),
					Message:       e.Message,
					DefaultPrompt: e.DefaultPrompt,
				})
			}
		},
		func(e *proto.PageFileChooserOpened) {
			p.mu.Lock()
			p.fileChooser = e
			p.mu.Unlock()
			if l.OnFileChooser != nil {
				l.OnFileChooser(FileChooserInfo{Multiple: e.Mode == proto.PageFileChooserOpenedModeSelectMultiple})
			}
		},
		func(e *proto.PageFrameNavigated) {
			if l.OnNavigated != nil && e.Frame != nil && e.Frame.ParentID == "" {
				l.OnNavigated(e.Frame.URL)
			}
		},
	)()
}

// Info returns the page's current URL and title. Best-effort: a closed
// page yields zero values.
func (p *Page) Info() PageInfo {
	info, err := p.page.Info()
	if err != nil || info == nil {
		return PageInfo{}
	}
	return PageInfo{URL: info.URL, Title: info.Title}
}

// Navigate loads a URL and waits for the page to settle.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	_ = page.WaitStable(300 * time.Millisecond)
	return nil
}

// NavigateBack goes one entry back in session history.
func (p *Page) NavigateBack(ctx context.Context) error {
	return p.page.Context(ctx).NavigateBack()
}

// NavigateForward goes one entry forward in session history.
func (p *Page) NavigateForward(ctx context.Context) error {
	return p.page.Context(ctx).NavigateForward()
}

// Activate brings the page's tab to the foreground.
func (p *Page) Activate() error {
	_, err := p.page.Activate()
	return err
}

// Close destroys the page.
func (p *Page) Close() error {
	return p.page.Close()
}

// WaitNetworkIdle blocks until the page's network has been quiet for a
// grace period, bounded by timeout. The bound is independent of the
// action timeout so a hung action is never mistaken for a hung network.
func (p *Page) WaitNetworkIdle(timeout time.Duration) {
	page := p.page.Timeout(timeout)
	defer page.CancelTimeout()
	wait := page.WaitRequestIdle(networkIdleGrace, nil, nil, nil)
	wait()
}

// Resize sets the viewport dimensions.
func (p *Page) Resize(width, height int) error {
	return p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

// Screenshot captures the viewport (or full page) as PNG bytes.
func (p *Page) Screenshot(fullPage bool) ([]byte, error) {
	if fullPage {
		return p.page.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
	}
	return p.page.Screenshot(false, nil)
}

// Eval runs JavaScript in the page and returns the result rendered as
// JSON text. Expression input is wrapped into a function for CDP.
func (p *Page) Eval(ctx context.Context, js string) (string, error) {
	fn := js
	trimmed := strings.TrimSpace(js)
	if !strings.HasPrefix(trimmed, "(") && !strings.HasPrefix(trimmed, "function") && !strings.HasPrefix(trimmed, "async") {
		fn = "() => (" + js + ")"
	}

	res, err := p.page.Context(ctx).Eval(fn)
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}
	return renderEvalResult(res), nil
}

// EvalSleep parks page script execution for the fixed snapshot-settle
// delay. Used by wait tools when no dialog is blocking scripts.
func (p *Page) EvalSleep(ctx context.Context) error {
	_, err := p.page.Context(ctx).Eval(`() => new Promise(r => setTimeout(r, 1000))`)
	return err
}

// HandleDialog accepts or dismisses the currently open native dialog.
func (p *Page) HandleDialog(accept bool, promptText string) error {
	return proto.PageHandleJavaScriptDialog{
		Accept:     accept,
		PromptText: promptText,
	}.Call(p.page)
}

// SetChooserFiles feeds file paths into the intercepted file chooser.
func (p *Page) SetChooserFiles(paths []string) error {
	p.mu.Lock()
	chooser := p.fileChooser
	p.fileChooser = nil
	p.mu.Unlock()

	if chooser == nil {
		return fmt.Errorf("no file chooser is open")
	}
	return proto.DOMSetFileInputFiles{
		Files:         paths,
		BackendNodeID: chooser.BackendNodeID,
	}.Call(p.page)
}

// MainFrame returns the snapshot root for this page.
func (p *Page) MainFrame() *Frame {
	return &Frame{page: p.page}
}

func formatConsoleMessage(e *proto.RuntimeConsoleAPICalled) ConsoleMessage {
	var parts []string
	for _, arg := range e.Args {
		s := arg.Value.String()
		if s != "" && s != "null" {
			parts = append(parts, s)
		}
	}

	level := "log"
	switch e.Type {
	case proto.RuntimeConsoleAPICalledTypeWarning:
		level = "warn"
	case proto.RuntimeConsoleAPICalledTypeError:
		level = "error"
	case proto.RuntimeConsoleAPICalledTypeInfo:
		level = "info"
	}
	return ConsoleMessage{Level: level, Text: strings.Join(parts, " ")}
}

func renderEvalResult(res *proto.RuntimeRemoteObject) string {
	if res == nil {
		return "undefined"
	}
	out := res.Value.String()
	if out == "" {
		return "undefined"
	}
	return out
}
