package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/pagepilot/pkg/browser"
)

// ErrNoTab is returned by operations that need an open tab when the
// session has none.
var ErrNoTab = fmt.Errorf("no open pages available")

// Options controls per-session behavior.
type Options struct {
	// RecordVideo starts a screencast recording on every new tab.
	RecordVideo bool
	// VideoDir is where in-flight recordings are written.
	VideoDir string
}

// Session tracks the open tabs and which one tool calls operate on.
// One session maps to one browser; closing the last tab tears the
// browser down so a stale instance never lingers.
type Session struct {
	manager *browser.Manager
	opts    Options
	logger  *slog.Logger

	mu      sync.Mutex
	tabs    []*Tab
	current int
}

func New(manager *browser.Manager, opts Options, logger *slog.Logger) *Session {
	return &Session{manager: manager, opts: opts, logger: logger}
}

// CurrentTab returns the active tab, or ErrNoTab when none is open.
func (s *Session) CurrentTab() (*Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) == 0 {
		return nil, ErrNoTab
	}
	return s.tabs[s.current], nil
}

// TabCount returns the number of open tabs.
func (s *Session) TabCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}

// NavigateCurrent navigates the active tab, opening a first tab when
// the session is empty. This is the entry point that bootstraps a
// session: every other tab-bound tool requires a tab to exist.
func (s *Session) NavigateCurrent(ctx context.Context, url string) (*Tab, error) {
	s.mu.Lock()
	empty := len(s.tabs) == 0
	var tab *Tab
	if !empty {
		tab = s.tabs[s.current]
	}
	s.mu.Unlock()

	if empty {
		return s.NewTab(ctx, url)
	}
	if err := tab.page.Navigate(ctx, url); err != nil {
		return nil, err
	}
	tab.ResetState()
	return tab, nil
}

// NewTab opens a new tab, optionally navigating it, and makes it
// current. The browser is started lazily on the first tab.
func (s *Session) NewTab(ctx context.Context, url string) (*Tab, error) {
	if !s.manager.Started() {
		if err := s.manager.Start(ctx); err != nil {
			return nil, err
		}
	}

	page, err := s.manager.NewPage(ctx, url)
	if err != nil {
		return nil, err
	}
	tab, err := newTab(page)
	if err != nil {
		_ = page.Close()
		return nil, err
	}

	if s.opts.RecordVideo {
		if _, err := page.StartVideo(s.opts.VideoDir); err != nil {
			s.logger.Warn("video recording unavailable", "error", err)
		}
	}

	s.mu.Lock()
	s.tabs = append(s.tabs, tab)
	s.current = len(s.tabs) - 1
	s.mu.Unlock()

	s.logger.Info("tab opened", "url", url, "tabs", s.TabCount())
	return tab, nil
}

// SelectTab makes the 1-based tab index current and brings it to the
// foreground.
func (s *Session) SelectTab(index int) (*Tab, error) {
	s.mu.Lock()
	if index < 1 || index > len(s.tabs) {
		s.mu.Unlock()
		return nil, fmt.Errorf("tab %d does not exist", index)
	}
	s.current = index - 1
	tab := s.tabs[s.current]
	s.mu.Unlock()

	if err := tab.page.Activate(); err != nil {
		return nil, fmt.Errorf("activate tab %d: %w", index, err)
	}
	return tab, nil
}

// CloseTab closes the 1-based tab index, or the current tab when index
// is 0. When the closed tab was current, its nearest remaining
// neighbor becomes current. Closing the last tab tears the session
// down.
func (s *Session) CloseTab(index int) error {
	s.mu.Lock()
	if len(s.tabs) == 0 {
		s.mu.Unlock()
		return ErrNoTab
	}
	if index == 0 {
		index = s.current + 1
	}
	if index < 1 || index > len(s.tabs) {
		s.mu.Unlock()
		return fmt.Errorf("tab %d does not exist", index)
	}

	i := index - 1
	tab := s.tabs[i]
	s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)

	s.current = nextCurrent(s.current, i, len(s.tabs))
	empty := len(s.tabs) == 0
	s.mu.Unlock()

	if err := tab.Close(); err != nil {
		s.logger.Warn("tab close failed", "error", err)
	}

	if empty {
		s.logger.Info("last tab closed, shutting browser down")
		if err := s.manager.Stop(); err != nil {
			s.logger.Warn("browser shutdown failed", "error", err)
		}
	}
	return nil
}

// nextCurrent picks the current tab index after closing the tab at
// closed. When the closed tab was current, its position is reused so
// the right-hand neighbor takes over; closing the rightmost tab falls
// back to the new rightmost.
func nextCurrent(current, closed, remaining int) int {
	if remaining == 0 {
		return 0
	}
	if current > closed {
		return current - 1
	}
	if current == closed && current > remaining-1 {
		return remaining - 1
	}
	return current
}

// Tabs returns the open tabs in order.
func (s *Session) Tabs() []*Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

// DescribeTabs renders the open tab list with the current tab marked.
func (s *Session) DescribeTabs() []string {
	s.mu.Lock()
	tabs := make([]*Tab, len(s.tabs))
	copy(tabs, s.tabs)
	current := s.current
	s.mu.Unlock()

	lines := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		info := tab.page.Info()
		marker := " "
		if i == current {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %d: %s (%s)", marker, i+1, info.Title, info.URL))
	}
	return lines
}

// Close tears the whole session down: all tabs, then the browser.
func (s *Session) Close() error {
	s.mu.Lock()
	tabs := s.tabs
	s.tabs = nil
	s.current = 0
	s.mu.Unlock()

	var g errgroup.Group
	for _, tab := range tabs {
		g.Go(tab.Close)
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("tab teardown incomplete", "error", err)
	}
	return s.manager.Stop()
}
