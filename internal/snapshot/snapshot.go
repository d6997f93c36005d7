package snapshot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-rod/rod"
	"gopkg.in/yaml.v3"
)

// IframePlaceholder is spliced into the tree when a nested frame cannot
// be captured (detached frame, cross-origin restriction).
const IframePlaceholder = "<could not take iframe snapshot>"

var refMarkerRe = regexp.MustCompile(`\[ref=([a-zA-Z0-9]+)\]`)

// Frame is the driver-side view of one attached frame. Implemented by
// pkg/browser; faked in tests.
type Frame interface {
	// AriaSnapshot returns a YAML document describing the frame's
	// accessibility tree. Interactive nodes carry [ref=eN] markers and
	// nested iframes appear as "iframe [ref=eN]" scalars.
	AriaSnapshot(ctx context.Context) (string, error)

	// FrameByRef returns the nested frame behind an iframe element
	// identified by its frame-local ref.
	FrameByRef(ctx context.Context, localID string) (Frame, error)

	// Resolve returns a live element handle for a frame-local ref.
	Resolve(ctx context.Context, localID string) (*rod.Element, error)
}

// frameCapture pairs an assigned index with the frame handle used to
// resolve its refs later.
type frameCapture struct {
	index int
	frame Frame
}

// Snapshot is one full capture of a page: the ordered frame list (index
// = depth-first discovery order) and the rendered text presented to the
// caller. References are only meaningful against the snapshot that
// produced them.
type Snapshot struct {
	frames []frameCapture
	text   string
}

// Capture builds a fresh snapshot rooted at the page's main frame,
// recursively descending into iframes. A root-frame failure fails the
// whole capture; nested-frame failures degrade to a placeholder node.
func Capture(ctx context.Context, root Frame) (*Snapshot, error) {
	s := &Snapshot{}
	tree, err := s.captureFrame(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("capture snapshot: %w", err)
	}

	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("render snapshot: %w", err)
	}
	s.text = "- Page Snapshot\n```yaml\n" + string(out) + "```\n"
	return s, nil
}

// Text returns the rendered form: a "Page Snapshot" heading followed by
// a fenced YAML block.
func (s *Snapshot) Text() string { return s.text }

// FrameCount returns the number of frames captured, main frame included.
func (s *Snapshot) FrameCount() int { return len(s.frames) }

// Resolve decodes a reference and asks the owning frame for a live
// element handle. Fails with ErrFrameMissing for out-of-range indices;
// driver-level resolution failures (element gone) are surfaced as-is.
func (s *Snapshot) Resolve(ctx context.Context, ref string) (*rod.Element, error) {
	idx, local := DecodeRef(ref)
	if idx < 0 || idx >= len(s.frames) {
		return nil, fmt.Errorf("%w: frame %d for ref %q", ErrFrameMissing, idx, ref)
	}
	return s.frames[idx].frame.Resolve(ctx, local)
}

// captureFrame allocates the next frame index, appends the capture to
// the frame list before descending, and returns the rewritten tree.
// Depth-first, first-encountered-first-indexed.
func (s *Snapshot) captureFrame(ctx context.Context, f Frame) (*yaml.Node, error) {
	fc := frameCapture{index: len(s.frames), frame: f}
	s.frames = append(s.frames, fc)

	raw, err := f.AriaSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse aria snapshot: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty aria snapshot")
	}

	root := doc.Content[0]
	if err := s.rewrite(ctx, root, fc); err != nil {
		return nil, err
	}
	return root, nil
}

// rewrite walks the parsed tree. Scalars in nested frames get their ref
// markers frame-prefixed; iframe scalars are replaced by a mapping from
// the (rewritten) iframe line to the recursively captured subtree.
// Mapping pairs visit key then value; recursion must finish before the
// caller returns, since iframe children require further driver calls.
func (s *Snapshot) rewrite(ctx context.Context, node *yaml.Node, fc frameCapture) error {
	switch node.Kind {
	case yaml.ScalarNode:
		original := node.Value
		node.Value = prefixRefs(node.Value, fc.index)
		if strings.HasPrefix(original, "iframe ") {
			s.spliceIframe(ctx, node, original, fc)
		}
		return nil

	case yaml.SequenceNode:
		for _, child := range node.Content {
			if err := s.rewrite(ctx, child, fc); err != nil {
				return err
			}
		}
		return nil

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Kind == yaml.ScalarNode && strings.HasPrefix(key.Value, "iframe ") {
				local := extractRef(key.Value)
				key.Value = prefixRefs(key.Value, fc.index)
				*val = *s.captureChild(ctx, local, fc)
				continue
			}
			if err := s.rewrite(ctx, key, fc); err != nil {
				return err
			}
			if err := s.rewrite(ctx, val, fc); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// spliceIframe turns an "iframe [ref=eN]" scalar into a single-pair
// mapping whose value is the nested frame's subtree (or the literal
// placeholder when the nested capture fails).
func (s *Snapshot) spliceIframe(ctx context.Context, node *yaml.Node, original string, fc frameCapture) {
	local := extractRef(original)
	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: node.Value}
	val := s.captureChild(ctx, local, fc)

	node.Kind = yaml.MappingNode
	node.Tag = "!!map"
	node.Value = ""
	node.Content = []*yaml.Node{key, val}
}

// captureChild resolves the nested frame behind an iframe ref and
// captures it. Any failure collapses to the placeholder scalar so one
// unreachable iframe never fails the whole capture.
func (s *Snapshot) captureChild(ctx context.Context, localRef string, fc frameCapture) *yaml.Node {
	placeholder := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: IframePlaceholder}
	if localRef == "" {
		return placeholder
	}

	child, err := fc.frame.FrameByRef(ctx, localRef)
	if err != nil {
		return placeholder
	}
	tree, err := s.captureFrame(ctx, child)
	if err != nil {
		return placeholder
	}
	return tree
}

// prefixRefs rewrites every [ref=...] marker in a scalar so references
// from nested frames stay globally unambiguous. Frame 0 refs are left
// untouched.
func prefixRefs(text string, frameIndex int) string {
	if frameIndex == 0 || !strings.Contains(text, "[ref=") {
		return text
	}
	return refMarkerRe.ReplaceAllStringFunc(text, func(m string) string {
		local := refMarkerRe.FindStringSubmatch(m)[1]
		return "[ref=" + EncodeRef(frameIndex, local) + "]"
	})
}

// extractRef pulls the first frame-local ref marker out of a scalar.
func extractRef(text string) string {
	m := refMarkerRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
