// Package tools defines the browser tool surface and the runner that
// executes tool calls under session lifecycle rules.
package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/pagepilot/internal/config"
	"github.com/nextlevelbuilder/pagepilot/internal/session"
	"github.com/nextlevelbuilder/pagepilot/internal/snapshot"
	"github.com/nextlevelbuilder/pagepilot/pkg/browser"
)

// Tool couples an MCP tool definition with its handler and lifecycle
// needs.
type Tool struct {
	Def      mcp.Tool
	NeedsTab bool
	Handler  Handler
}

// Handler validates a call's arguments and describes what should
// happen. Side effects go into Outcome.Action, not the handler body,
// so the runner can race them against dialogs.
type Handler func(ctx context.Context, call *Call) (*Outcome, error)

// Session is the tab-session surface tools and the runner operate on.
// *session.Session backs it in production via liveSession.
type Session interface {
	CurrentTab() (Tab, error)
	TabCount() int
	DescribeTabs() []string
	NavigateCurrent(ctx context.Context, url string) (Tab, error)
	NewTab(ctx context.Context, url string) (Tab, error)
	SelectTab(index int) (Tab, error)
	CloseTab(index int) error
	Close() error
}

// Tab is the per-tab surface tools and the runner operate on.
type Tab interface {
	Page() *browser.Page
	Store() *snapshot.Store
	Modal() *session.ModalState
	Info() browser.PageInfo
	Console() []browser.ConsoleMessage
	Requests() []browser.RequestEntry
	CaptureSnapshot(ctx context.Context) (*snapshot.Snapshot, error)
	RunWithDialogRace(ctx context.Context, action func(context.Context) error) (bool, error)
	WaitNetworkIdle(timeout time.Duration)
}

// liveSession adapts *session.Session to the Session interface. Only
// the tab-returning methods need wrapping; a typed nil must come back
// as a nil interface.
type liveSession struct {
	s *session.Session
}

func (l liveSession) CurrentTab() (Tab, error) {
	tab, err := l.s.CurrentTab()
	if err != nil {
		return nil, err
	}
	return tab, nil
}

func (l liveSession) TabCount() int          { return l.s.TabCount() }
func (l liveSession) DescribeTabs() []string { return l.s.DescribeTabs() }

func (l liveSession) NavigateCurrent(ctx context.Context, url string) (Tab, error) {
	tab, err := l.s.NavigateCurrent(ctx, url)
	if err != nil {
		return nil, err
	}
	return tab, nil
}

func (l liveSession) NewTab(ctx context.Context, url string) (Tab, error) {
	tab, err := l.s.NewTab(ctx, url)
	if err != nil {
		return nil, err
	}
	return tab, nil
}

func (l liveSession) SelectTab(index int) (Tab, error) {
	tab, err := l.s.SelectTab(index)
	if err != nil {
		return nil, err
	}
	return tab, nil
}

func (l liveSession) CloseTab(index int) error { return l.s.CloseTab(index) }
func (l liveSession) Close() error             { return l.s.Close() }

// Call carries everything a handler may consult.
type Call struct {
	Session Session
	Tab     Tab // nil when the tool does not need one
	Config  *config.Config
	Args    map[string]any
}

// Outcome tells the runner what to execute and how to enrich the
// response.
type Outcome struct {
	// Text lines describing the action's result, prepended to the
	// synthesized summary.
	Text []string
	// Code is a human-readable transcript of what the action performs.
	// Documentation only, never executed.
	Code []string
	// Action is the real side effect, raced against dialog events.
	Action func(ctx context.Context) error
	// WaitForNetwork waits for network quiescence after the action.
	WaitForNetwork bool
	// CaptureSnapshot refreshes the page snapshot after the action,
	// whether it succeeded or failed, unless a dialog is blocking
	// scripts.
	CaptureSnapshot bool
	// ResultOverride short-circuits response assembly entirely.
	ResultOverride *mcp.CallToolResult
}
