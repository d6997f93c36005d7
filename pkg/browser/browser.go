// Package browser wraps the rod/CDP driver: launching Chrome, opening
// pages, per-frame accessibility snapshots, element resolution, input
// actions, tracing, and screencast recording.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	shellwords "github.com/mattn/go-shellwords"
)

// Options controls how the browser is launched. Read lazily at Start
// time: mutations after Start take effect only on the next launch.
type Options struct {
	Kind        string // "chrome", "chromium", "edge"
	Bin         string // explicit executable path, empty = auto-detect
	Headless    bool
	UserDataDir string
	CDPURL      string // connect to a running browser instead of launching
	ExtraArgs   string // shell-style string of extra Chrome flags
}

// Manager owns the browser process lifecycle. One Manager per session.
type Manager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     Options
	logger   *slog.Logger
}

// NewManager creates a Manager. The browser is not started until Start.
func NewManager(opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{opts: opts, logger: logger}
}

// Start launches Chrome (or connects to a remote CDP endpoint). This is
// the only failure callers treat as fatal: everything downstream
// degrades per tool call.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return nil
	}

	controlURL := m.opts.CDPURL
	if controlURL == "" {
		l, err := m.buildLauncher()
		if err != nil {
			return err
		}
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		m.launcher = l
		controlURL = url
		m.logger.Info("browser launched", "kind", m.opts.Kind, "headless", m.opts.Headless)
	} else {
		m.logger.Info("connecting to remote browser", "cdp", controlURL)
	}

	// The browser outlives the call that started it, so it is not
	// bound to ctx.
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}

	m.browser = b
	return nil
}

// Started reports whether the browser is up.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser != nil
}

// NewPage opens a new page (tab) and waits for it to settle.
func (m *Manager) NewPage(ctx context.Context, url string) (*Page, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()

	if b == nil {
		return nil, fmt.Errorf("browser not running")
	}

	if url == "" {
		url = "about:blank"
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	_ = page.WaitStable(300 * time.Millisecond)

	return newPage(page, m.logger), nil
}

// Stop closes the browser. Callers treat teardown as best-effort.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil
	}

	err := m.browser.Close()
	m.browser = nil
	if m.launcher != nil {
		m.launcher.Cleanup()
		m.launcher = nil
	}
	m.logger.Info("browser stopped")
	return err
}

// buildLauncher assembles the rod launcher from Options.
func (m *Manager) buildLauncher() (*launcher.Launcher, error) {
	l := launcher.New().
		Headless(m.opts.Headless).
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check")

	if m.opts.Bin != "" {
		l = l.Bin(m.opts.Bin)
	}
	if m.opts.UserDataDir != "" {
		l = l.UserDataDir(m.opts.UserDataDir)
	}

	if m.opts.ExtraArgs != "" {
		args, err := shellwords.Parse(m.opts.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("parse extra browser args: %w", err)
		}
		for _, arg := range args {
			name, value := splitFlag(arg)
			if value == "" {
				l = l.Set(flags.Flag(name))
			} else {
				l = l.Set(flags.Flag(name), value)
			}
		}
	}
	return l, nil
}

// splitFlag parses one "--name=value" (or bare "--name") Chrome flag.
func splitFlag(arg string) (name, value string) {
	arg = strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(arg, '='); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	return arg, ""
}
