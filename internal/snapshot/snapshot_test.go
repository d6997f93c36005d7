package snapshot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-rod/rod"
)

// fakeFrame is a scripted driver frame for builder tests.
type fakeFrame struct {
	aria    string
	ariaErr error
	// children maps iframe refs to nested frames.
	children map[string]*fakeFrame
	// resolved records refs passed to Resolve.
	resolved []string
}

func (f *fakeFrame) AriaSnapshot(ctx context.Context) (string, error) {
	return f.aria, f.ariaErr
}

func (f *fakeFrame) FrameByRef(ctx context.Context, localID string) (Frame, error) {
	child, ok := f.children[localID]
	if !ok {
		return nil, errors.New("no such frame")
	}
	return child, nil
}

func (f *fakeFrame) Resolve(ctx context.Context, localID string) (*rod.Element, error) {
	f.resolved = append(f.resolved, localID)
	return &rod.Element{}, nil
}

func TestEncodeDecodeRef_RoundTrip(t *testing.T) {
	tests := []struct {
		frame int
		local string
		want  string
	}{
		{0, "e1", "e1"},
		{0, "e42", "e42"},
		{1, "e1", "f1e1"},
		{3, "e17", "f3e17"},
		{12, "e9", "f12e9"},
	}
	for _, tt := range tests {
		ref := EncodeRef(tt.frame, tt.local)
		if ref != tt.want {
			t.Errorf("EncodeRef(%d, %q) = %q, want %q", tt.frame, tt.local, ref, tt.want)
		}
		gotFrame, gotLocal := DecodeRef(ref)
		if gotFrame != tt.frame || gotLocal != tt.local {
			t.Errorf("DecodeRef(%q) = (%d, %q), want (%d, %q)", ref, gotFrame, gotLocal, tt.frame, tt.local)
		}
	}
}

func TestDecodeRef_NoPrefix(t *testing.T) {
	frame, local := DecodeRef("e5")
	if frame != 0 || local != "e5" {
		t.Errorf("expected (0, e5), got (%d, %q)", frame, local)
	}
}

func TestCapture_SingleFrame(t *testing.T) {
	root := &fakeFrame{aria: "- button \"OK\" [ref=e1]\n- link \"Docs\" [ref=e2]\n"}

	snap, err := Capture(context.Background(), root)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if snap.FrameCount() != 1 {
		t.Errorf("expected 1 frame, got %d", snap.FrameCount())
	}

	text := snap.Text()
	if !strings.Contains(text, "- Page Snapshot") {
		t.Error("missing Page Snapshot heading")
	}
	if !strings.Contains(text, "```yaml") {
		t.Error("missing fenced yaml block")
	}
	if !strings.Contains(text, "[ref=e1]") {
		t.Error("main-frame refs must stay unprefixed")
	}
}

func TestCapture_NestedIframes(t *testing.T) {
	grandchild := &fakeFrame{aria: "- button \"Deep\" [ref=e1]\n"}
	child := &fakeFrame{
		aria:     "- heading \"Inner\" [ref=e1]\n- iframe [ref=e2]\n",
		children: map[string]*fakeFrame{"e2": grandchild},
	}
	root := &fakeFrame{
		aria:     "- iframe [ref=e3]\n- button \"Top\" [ref=e4]\n",
		children: map[string]*fakeFrame{"e3": child},
	}

	snap, err := Capture(context.Background(), root)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	// Two nested iframes: 3 frame captures, depth-first order.
	if snap.FrameCount() != 3 {
		t.Fatalf("expected 3 frames, got %d", snap.FrameCount())
	}

	text := snap.Text()
	// Child frame refs are namespaced by discovery index.
	if !strings.Contains(text, "[ref=f1e1]") {
		t.Errorf("child frame refs should carry f1 prefix:\n%s", text)
	}
	if !strings.Contains(text, "[ref=f2e1]") {
		t.Errorf("grandchild frame refs should carry f2 prefix:\n%s", text)
	}
	// Main frame refs stay unprefixed.
	if !strings.Contains(text, "[ref=e4]") {
		t.Errorf("main frame ref lost:\n%s", text)
	}
}

func TestCapture_DepthFirstIndexOrder(t *testing.T) {
	// Two sibling iframes, the first of which has its own child. The
	// first sibling's subtree must be indexed before the second sibling.
	deep := &fakeFrame{aria: "- button \"A\" [ref=e1]\n"}
	first := &fakeFrame{
		aria:     "- iframe [ref=e1]\n",
		children: map[string]*fakeFrame{"e1": deep},
	}
	second := &fakeFrame{aria: "- button \"B\" [ref=e1]\n"}
	root := &fakeFrame{
		aria:     "- iframe [ref=e1]\n- iframe [ref=e2]\n",
		children: map[string]*fakeFrame{"e1": first, "e2": second},
	}

	snap, err := Capture(context.Background(), root)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if snap.FrameCount() != 4 {
		t.Fatalf("expected 4 frames, got %d", snap.FrameCount())
	}

	// first=f1, deep=f2, second=f3 under depth-first discovery.
	if _, err := snap.Resolve(context.Background(), "f2e1"); err != nil {
		t.Errorf("resolve f2e1: %v", err)
	}
	if len(deep.resolved) != 1 || deep.resolved[0] != "e1" {
		t.Errorf("f2 should be the deep frame, resolved=%v", deep.resolved)
	}
	if _, err := snap.Resolve(context.Background(), "f3e1"); err != nil {
		t.Errorf("resolve f3e1: %v", err)
	}
	if len(second.resolved) != 1 {
		t.Errorf("f3 should be the second sibling, resolved=%v", second.resolved)
	}
}

func TestCapture_IframeFailureDegradesToPlaceholder(t *testing.T) {
	broken := &fakeFrame{ariaErr: errors.New("frame detached")}
	root := &fakeFrame{
		aria:     "- iframe [ref=e1]\n- button \"OK\" [ref=e2]\n",
		children: map[string]*fakeFrame{"e1": broken},
	}

	snap, err := Capture(context.Background(), root)
	if err != nil {
		t.Fatalf("parent capture must survive nested failure: %v", err)
	}
	if !strings.Contains(snap.Text(), IframePlaceholder) {
		t.Errorf("expected placeholder in:\n%s", snap.Text())
	}
}

func TestCapture_UnresolvableIframeRef(t *testing.T) {
	root := &fakeFrame{aria: "- iframe [ref=e9]\n"} // no children registered

	snap, err := Capture(context.Background(), root)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !strings.Contains(snap.Text(), IframePlaceholder) {
		t.Error("expected placeholder for unresolvable iframe ref")
	}
}

func TestCapture_RootFailurePropagates(t *testing.T) {
	root := &fakeFrame{ariaErr: errors.New("page closed")}
	if _, err := Capture(context.Background(), root); err == nil {
		t.Error("expected root capture failure to propagate")
	}
}

func TestSnapshot_ResolveFrameOutOfRange(t *testing.T) {
	root := &fakeFrame{aria: "- button \"OK\" [ref=e1]\n"}
	snap, err := Capture(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	_, err = snap.Resolve(context.Background(), "f7e1")
	if !errors.Is(err, ErrFrameMissing) {
		t.Errorf("expected ErrFrameMissing, got %v", err)
	}
}

func TestStore_CaptureReplacesAndClear(t *testing.T) {
	st := NewStore()

	if _, ok := st.Current(); ok {
		t.Error("fresh store should have no snapshot")
	}
	if _, err := st.Resolve(context.Background(), "e1"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}

	root := &fakeFrame{aria: "- button \"One\" [ref=e1]\n"}
	first, err := st.Capture(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	second, err := st.Capture(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	cur, ok := st.Current()
	if !ok || cur != second || cur == first {
		t.Error("second capture should supersede the first")
	}

	st.Clear()
	if _, ok := st.Current(); ok {
		t.Error("store should be empty after Clear")
	}
}

func TestStore_ResolveUsesCurrentSnapshot(t *testing.T) {
	st := NewStore()
	root := &fakeFrame{aria: "- textbox \"Name\" [ref=e1]\n"}
	if _, err := st.Capture(context.Background(), root); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Resolve(context.Background(), "e1"); err != nil {
		t.Errorf("resolve: %v", err)
	}
	if len(root.resolved) != 1 || root.resolved[0] != "e1" {
		t.Errorf("expected frame-local resolution of e1, got %v", root.resolved)
	}
}
