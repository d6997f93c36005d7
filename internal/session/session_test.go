package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nextlevelbuilder/pagepilot/internal/snapshot"
	"github.com/nextlevelbuilder/pagepilot/pkg/browser"
)

func TestNextCurrent(t *testing.T) {
	cases := []struct {
		name                       string
		current, closed, remaining int
		want                       int
	}{
		{"close current middle, neighbor takes its slot", 1, 1, 2, 1},
		{"close current rightmost, falls back left", 2, 2, 2, 1},
		{"close left of current, current shifts down", 2, 0, 2, 1},
		{"close right of current, current unchanged", 0, 2, 2, 0},
		{"close only tab", 0, 0, 0, 0},
		{"close current first of three", 0, 0, 2, 0},
	}
	for _, c := range cases {
		if got := nextCurrent(c.current, c.closed, c.remaining); got != c.want {
			t.Errorf("%s: nextCurrent(%d,%d,%d) = %d, want %d",
				c.name, c.current, c.closed, c.remaining, got, c.want)
		}
	}
}

func TestModalState_DialogLifecycle(t *testing.T) {
	m := &ModalState{}

	if m.ScriptsBlocked() {
		t.Fatal("scripts blocked with no dialog")
	}

	m.DialogOpened(browser.DialogInfo{Kind: "confirm", Message: "Sure?"})
	if !m.ScriptsBlocked() {
		t.Fatal("confirm dialog should block scripts")
	}
	d, ok := m.Dialog()
	if !ok || d.Message != "Sure?" {
		t.Fatalf("Dialog() = %+v, %v", d, ok)
	}

	m.ClearDialog()
	if _, ok := m.Dialog(); ok {
		t.Fatal("dialog survived ClearDialog")
	}
	if m.ScriptsBlocked() {
		t.Fatal("scripts still blocked after dialog handled")
	}
}

func TestModalState_FileChooserDoesNotBlockScripts(t *testing.T) {
	m := &ModalState{}
	m.FileChooserOpened(browser.FileChooserInfo{Multiple: true})

	if m.ScriptsBlocked() {
		t.Fatal("file chooser must not block scripts")
	}
	desc := strings.Join(m.Describe(), "\n")
	if !strings.Contains(desc, "file chooser") || !strings.Contains(desc, "browser_file_upload") {
		t.Errorf("Describe() = %q", desc)
	}
}

func TestModalState_ArmedSignalFires(t *testing.T) {
	m := &ModalState{}
	opened := m.Arm()

	m.DialogOpened(browser.DialogInfo{Kind: "alert", Message: "hi"})
	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatal("armed signal never fired")
	}
}

func TestModalState_SignalWithoutArmIsDropped(t *testing.T) {
	m := &ModalState{}
	m.DialogOpened(browser.DialogInfo{Kind: "alert"})
	if _, ok := m.Dialog(); !ok {
		t.Fatal("dialog not recorded")
	}
}

func TestRunWithDialogRace_DialogWins(t *testing.T) {
	tab := &Tab{modal: &ModalState{}}

	released := make(chan struct{})
	dialogOpened, err := tab.RunWithDialogRace(context.Background(), func(ctx context.Context) error {
		tab.modal.DialogOpened(browser.DialogInfo{Kind: "confirm", Message: "leave?"})
		// Simulates the action parked behind the dialog until the
		// race cancels it.
		select {
		case <-ctx.Done():
		case <-released:
		}
		return nil
	})
	close(released)

	if err != nil {
		t.Fatalf("RunWithDialogRace: %v", err)
	}
	if !dialogOpened {
		t.Fatal("dialog should have won the race")
	}
}

func TestRunWithDialogRace_ActionWins(t *testing.T) {
	tab := &Tab{modal: &ModalState{}}

	dialogOpened, err := tab.RunWithDialogRace(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil || dialogOpened {
		t.Fatalf("got dialogOpened=%v err=%v, want false, nil", dialogOpened, err)
	}
}

func TestRunWithDialogRace_ActionError(t *testing.T) {
	tab := &Tab{modal: &ModalState{}}
	boom := errors.New("boom")

	_, err := tab.RunWithDialogRace(context.Background(), func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestRunWithDialogRace_DialogDuringFastAction(t *testing.T) {
	tab := &Tab{modal: &ModalState{}}

	dialogOpened, err := tab.RunWithDialogRace(context.Background(), func(ctx context.Context) error {
		tab.modal.DialogOpened(browser.DialogInfo{Kind: "alert"})
		return nil
	})
	if err != nil {
		t.Fatalf("RunWithDialogRace: %v", err)
	}
	if !dialogOpened {
		t.Fatal("open dialog at action completion must be reported")
	}
}

func newTestTab(t *testing.T) *Tab {
	t.Helper()
	requests, err := lru.New[string, browser.RequestEntry](8)
	if err != nil {
		t.Fatal(err)
	}
	return &Tab{
		store:    snapshot.NewStore(),
		modal:    &ModalState{},
		requests: requests,
	}
}

func TestHandleNavigation_LateEventForSnapshottedDocument(t *testing.T) {
	tab := newTestTab(t)
	tab.console = []browser.ConsoleMessage{{Level: "log", Text: "hello"}}
	tab.requests.Add("r1", browser.RequestEntry{Method: "GET", URL: "https://example.com/"})
	tab.snapshotURL = "https://example.com/"

	// The event for the document the latest snapshot was taken on can
	// arrive after that snapshot; it must not wipe it.
	tab.handleNavigation("https://example.com/")
	if len(tab.Console()) != 1 {
		t.Fatal("event for the snapshotted document must not reset state")
	}

	tab.handleNavigation("https://example.com/next")
	if len(tab.Console()) != 0 {
		t.Fatal("navigating to a new document must reset state")
	}
	if len(tab.Requests()) != 0 {
		t.Fatal("request log should be purged on navigation")
	}
}

func TestHandleNavigation_NoSnapshotAlwaysResets(t *testing.T) {
	tab := newTestTab(t)
	tab.console = []browser.ConsoleMessage{{Level: "log", Text: "hello"}}

	tab.handleNavigation("https://example.com/")
	if len(tab.Console()) != 0 {
		t.Fatal("navigation without a covering snapshot must reset state")
	}
}

func TestRunWithDialogRace_ContextCancelled(t *testing.T) {
	tab := &Tab{modal: &ModalState{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tab.RunWithDialogRace(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
