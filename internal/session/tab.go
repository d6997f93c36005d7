package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nextlevelbuilder/pagepilot/internal/snapshot"
	"github.com/nextlevelbuilder/pagepilot/pkg/browser"
)

const (
	maxConsoleMessages = 200
	requestLogSize     = 200
)

// Tab pairs one browser page with its accumulated state: console
// messages, a bounded network request log, the element reference
// snapshot, and modal dialog tracking. Navigating the tab resets the
// accumulated state.
type Tab struct {
	page  *browser.Page
	store *snapshot.Store
	modal *ModalState

	mu          sync.Mutex
	console     []browser.ConsoleMessage
	requests    *lru.Cache[string, browser.RequestEntry]
	snapshotURL string
}

func newTab(page *browser.Page) (*Tab, error) {
	requests, err := lru.New[string, browser.RequestEntry](requestLogSize)
	if err != nil {
		return nil, err
	}
	t := &Tab{
		page:     page,
		store:    snapshot.NewStore(),
		modal:    &ModalState{},
		requests: requests,
	}

	page.Attach(browser.Listeners{
		OnConsole: t.addConsole,
		OnRequest: func(id string, entry browser.RequestEntry) {
			t.requests.Add(id, entry)
		},
		OnResponse: func(id string, status string) {
			if entry, ok := t.requests.Get(id); ok {
				entry.Status = status
				t.requests.Add(id, entry)
			}
		},
		OnDialog:      t.modal.DialogOpened,
		OnFileChooser: t.modal.FileChooserOpened,
		OnNavigated:   t.handleNavigation,
	})
	return t, nil
}

// Page returns the underlying driver page.
func (t *Tab) Page() *browser.Page { return t.page }

// Modal returns the tab's modal dialog state.
func (t *Tab) Modal() *ModalState { return t.modal }

// Store returns the tab's snapshot store.
func (t *Tab) Store() *snapshot.Store { return t.store }

// Info returns the page's current URL and title.
func (t *Tab) Info() browser.PageInfo { return t.page.Info() }

// WaitNetworkIdle blocks until the page's network goes quiet or the
// timeout elapses.
func (t *Tab) WaitNetworkIdle(timeout time.Duration) { t.page.WaitNetworkIdle(timeout) }

func (t *Tab) addConsole(msg browser.ConsoleMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.console = append(t.console, msg)
	if len(t.console) > maxConsoleMessages {
		t.console = t.console[len(t.console)-maxConsoleMessages:]
	}
}

// Console returns a copy of the accumulated console messages.
func (t *Tab) Console() []browser.ConsoleMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]browser.ConsoleMessage, len(t.console))
	copy(out, t.console)
	return out
}

// Requests returns the logged network requests, oldest first. The log
// is bounded; busy pages only retain the most recent entries.
func (t *Tab) Requests() []browser.RequestEntry {
	var out []browser.RequestEntry
	for _, key := range t.requests.Keys() {
		if entry, ok := t.requests.Peek(key); ok {
			out = append(out, entry)
		}
	}
	return out
}

// handleNavigation runs on the driver's event goroutine, which can
// deliver the frame-navigated event for a tool's own navigation after
// that tool already captured a fresh snapshot. A snapshot taken on the
// document the event announces is current, not stale, so it survives;
// any other navigation wipes the accumulated state.
func (t *Tab) handleNavigation(url string) {
	t.mu.Lock()
	covered := t.snapshotURL != "" && t.snapshotURL == url
	t.mu.Unlock()
	if covered {
		return
	}
	t.ResetState()
}

// ResetState drops console messages, the request log, and the element
// snapshot. References from before a navigation must never resolve
// against the new document.
func (t *Tab) ResetState() {
	t.mu.Lock()
	t.console = nil
	t.snapshotURL = ""
	t.mu.Unlock()
	t.requests.Purge()
	t.store.Clear()
}

// CaptureSnapshot takes a fresh accessibility snapshot rooted at the
// tab's main frame and makes it current.
func (t *Tab) CaptureSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	url := t.page.Info().URL
	snap, err := t.store.Capture(ctx, frameAdapter{t.page.MainFrame()})
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.snapshotURL = url
	t.mu.Unlock()
	return snap, nil
}

// RunWithDialogRace executes action while watching for a dialog to
// open. If a dialog opens first, the action's outcome is discarded and
// the method returns dialogOpened=true: the caller must report the
// dialog instead of the action result. The signal is armed before the
// action starts so an immediately-opening dialog is never missed.
func (t *Tab) RunWithDialogRace(ctx context.Context, action func(context.Context) error) (dialogOpened bool, err error) {
	opened := t.modal.Arm()
	defer t.modal.Disarm()

	actionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- action(actionCtx)
	}()

	select {
	case <-opened:
		// The action is likely parked behind the dialog; cancel it and
		// let the goroutine drain in the background.
		cancel()
		return true, nil
	case err := <-done:
		if _, ok := t.modal.Dialog(); ok {
			return true, nil
		}
		return false, err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Close tears the tab down: any in-flight recording is discarded and
// the page is closed.
func (t *Tab) Close() error {
	if rec := t.page.Video(); rec != nil {
		_ = rec.Discard()
	}
	t.store.Clear()
	return t.page.Close()
}

// frameAdapter lets the snapshot builder walk driver frames without
// the driver package depending on the snapshot package.
type frameAdapter struct {
	f *browser.Frame
}

func (a frameAdapter) AriaSnapshot(ctx context.Context) (string, error) {
	return a.f.AriaSnapshot(ctx)
}

func (a frameAdapter) Resolve(ctx context.Context, localID string) (*rod.Element, error) {
	return a.f.Resolve(ctx, localID)
}

func (a frameAdapter) FrameByRef(ctx context.Context, localID string) (snapshot.Frame, error) {
	child, err := a.f.FrameByRef(ctx, localID)
	if err != nil {
		return nil, err
	}
	return frameAdapter{child}, nil
}
