package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Frame adapts one rod page (a top-level page or an iframe's page
// proxy) to the snapshot builder. Each AriaSnapshot call replaces the
// frame's element reference table.
type Frame struct {
	page *rod.Page

	mu   sync.Mutex
	refs map[string]proto.DOMBackendNodeID
}

// AriaSnapshot captures the frame's accessibility tree as YAML text
// with [ref=eN] markers, rebuilding the reference table as it goes.
func (f *Frame) AriaSnapshot(ctx context.Context) (string, error) {
	page := f.page.Context(ctx)
	tree, err := proto.AccessibilityGetFullAXTree{FrameID: page.FrameID}.Call(page)
	if err != nil {
		return "", fmt.Errorf("accessibility tree: %w", err)
	}

	refs := make(map[string]proto.DOMBackendNodeID)
	text := formatAXTree(tree.Nodes, refs)

	f.mu.Lock()
	f.refs = refs
	f.mu.Unlock()
	return text, nil
}

// Resolve turns a local element reference from the latest snapshot
// into a live element.
func (f *Frame) Resolve(ctx context.Context, localID string) (*rod.Element, error) {
	f.mu.Lock()
	backendID, ok := f.refs[localID]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("element %s not found in the current snapshot", localID)
	}

	page := f.page.Context(ctx)
	obj, err := proto.DOMResolveNode{BackendNodeID: backendID}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("element %s is no longer attached: %w", localID, err)
	}
	el, err := page.ElementFromObject(obj.Object)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", localID, err)
	}
	return el, nil
}

// FrameByRef resolves an iframe element reference to its content
// frame.
func (f *Frame) FrameByRef(ctx context.Context, localID string) (*Frame, error) {
	el, err := f.Resolve(ctx, localID)
	if err != nil {
		return nil, err
	}
	child, err := el.Frame()
	if err != nil {
		return nil, fmt.Errorf("iframe %s content: %w", localID, err)
	}
	return &Frame{page: child}, nil
}
