// Package session owns the browser tab lifecycle: tracking open tabs,
// the current tab, per-tab console and network logs, and the modal
// dialog state that gates snapshot capture.
package session

import (
	"fmt"
	"sync"

	"github.com/nextlevelbuilder/pagepilot/pkg/browser"
)

// ModalState tracks native modal UI (JavaScript dialogs, file
// choosers) for one tab. Dialogs block page script execution until
// handled, so tools consult this before evaluating anything.
type ModalState struct {
	mu          sync.Mutex
	dialog      *browser.DialogInfo
	fileChooser *browser.FileChooserInfo
	armed       chan struct{}
}

// Arm installs a one-shot signal that fires if a dialog opens. Must be
// called before starting the action that might trigger the dialog, or
// a fast dialog could be missed.
func (m *ModalState) Arm() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = make(chan struct{}, 1)
	return m.armed
}

// Disarm removes the armed signal. Safe to call without a prior Arm.
func (m *ModalState) Disarm() {
	m.mu.Lock()
	m.armed = nil
	m.mu.Unlock()
}

func (m *ModalState) signal() {
	if m.armed != nil {
		select {
		case m.armed <- struct{}{}:
		default:
		}
	}
}

// DialogOpened records a newly opened dialog and fires the armed
// signal.
func (m *ModalState) DialogOpened(d browser.DialogInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog = &d
	m.signal()
}

// FileChooserOpened records an intercepted file chooser.
func (m *ModalState) FileChooserOpened(fc browser.FileChooserInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileChooser = &fc
	m.signal()
}

// Dialog returns the open, unhandled dialog if there is one.
func (m *ModalState) Dialog() (browser.DialogInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dialog == nil {
		return browser.DialogInfo{}, false
	}
	return *m.dialog, true
}

// FileChooser returns the pending file chooser if there is one.
func (m *ModalState) FileChooser() (browser.FileChooserInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fileChooser == nil {
		return browser.FileChooserInfo{}, false
	}
	return *m.fileChooser, true
}

// ClearDialog forgets the dialog after it has been handled.
func (m *ModalState) ClearDialog() {
	m.mu.Lock()
	m.dialog = nil
	m.mu.Unlock()
}

// ClearFileChooser forgets the pending file chooser.
func (m *ModalState) ClearFileChooser() {
	m.mu.Lock()
	m.fileChooser = nil
	m.mu.Unlock()
}

// ScriptsBlocked reports whether page scripts are suspended. Only
// JavaScript dialogs block the page; a file chooser does not.
func (m *ModalState) ScriptsBlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dialog != nil
}

// Describe renders the open modal state for tool output.
func (m *ModalState) Describe() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lines []string
	if m.dialog != nil {
		line := fmt.Sprintf("- [%s dialog] %q", m.dialog.Kind, m.dialog.Message)
		if m.dialog.Kind == "prompt" && m.dialog.DefaultPrompt != "" {
			line += fmt.Sprintf(" (default: %q)", m.dialog.DefaultPrompt)
		}
		lines = append(lines, line, "  Use the browser_handle_dialog tool to accept or dismiss it.")
	}
	if m.fileChooser != nil {
		line := "- [file chooser]"
		if m.fileChooser.Multiple {
			line += " accepting multiple files"
		}
		lines = append(lines, line, "  Use the browser_file_upload tool to provide files.")
	}
	return lines
}
