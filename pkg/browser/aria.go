package browser

import (
	"strconv"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// maxAXNodes caps how many accessibility nodes one frame contributes.
// Pages with enormous trees (infinite feeds) still snapshot quickly.
const maxAXNodes = 500

// interactiveRoles always get an element reference.
var interactiveRoles = map[string]bool{
	"button":           true,
	"link":             true,
	"textbox":          true,
	"checkbox":         true,
	"radio":            true,
	"combobox":         true,
	"listbox":          true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"option":           true,
	"searchbox":        true,
	"slider":           true,
	"spinbutton":       true,
	"switch":           true,
	"tab":              true,
	"treeitem":         true,
}

// contentRoles get a reference only when they carry a name, so text
// extraction tools can target them.
var contentRoles = map[string]bool{
	"heading":      true,
	"cell":         true,
	"gridcell":     true,
	"columnheader": true,
	"rowheader":    true,
	"listitem":     true,
	"article":      true,
	"region":       true,
	"main":         true,
	"navigation":   true,
	"img":          true,
	"image":        true,
}

// axString extracts the string form of an accessibility value.
func axString(v *proto.AccessibilityAXValue) string {
	if v == nil {
		return ""
	}
	if s := v.Value.Str(); s != "" {
		return s
	}
	switch v.Value.Val().(type) {
	case float64, int, bool:
		return v.Value.String()
	}
	return ""
}

type axNode struct {
	node     *proto.AccessibilityAXNode
	children []*axNode
}

// formatAXTree renders flat CDP accessibility nodes as a YAML list.
// Interactive and named content nodes receive [ref=eN] markers; the
// refs map collects each marker's backend node for later resolution.
// Iframes become leaf scalars and are never descended into here.
func formatAXTree(nodes []*proto.AccessibilityAXNode, refs map[string]proto.DOMBackendNodeID) string {
	root := linkAXNodes(nodes)
	if root == nil {
		return "[]\n"
	}

	f := &axFormatter{refs: refs, budget: maxAXNodes}
	var b strings.Builder
	f.emitChildren(&b, []*axNode{root}, "")
	if b.Len() == 0 {
		return "[]\n"
	}
	return b.String()
}

// linkAXNodes turns the flat node list into a tree rooted at the node
// no other node claims as a child.
func linkAXNodes(nodes []*proto.AccessibilityAXNode) *axNode {
	if len(nodes) == 0 {
		return nil
	}

	byID := make(map[proto.AccessibilityAXNodeID]*axNode, len(nodes))
	for _, n := range nodes {
		if n.NodeID != "" {
			byID[n.NodeID] = &axNode{node: n}
		}
	}

	referenced := make(map[proto.AccessibilityAXNodeID]bool)
	for _, n := range nodes {
		parent := byID[n.NodeID]
		if parent == nil {
			continue
		}
		for _, cid := range n.ChildIDs {
			child, ok := byID[cid]
			if !ok {
				continue
			}
			parent.children = append(parent.children, child)
			referenced[cid] = true
		}
	}

	for _, n := range nodes {
		if n.NodeID != "" && !referenced[n.NodeID] {
			return byID[n.NodeID]
		}
	}
	return byID[nodes[0].NodeID]
}

type axFormatter struct {
	refs    map[string]proto.DOMBackendNodeID
	counter int
	budget  int
}

func (f *axFormatter) nextRef(backendID proto.DOMBackendNodeID) string {
	f.counter++
	ref := "e" + strconv.Itoa(f.counter)
	f.refs[ref] = backendID
	return ref
}

func (f *axFormatter) emitChildren(b *strings.Builder, children []*axNode, indent string) {
	for _, c := range children {
		f.emit(b, c, indent)
	}
}

func (f *axFormatter) emit(b *strings.Builder, n *axNode, indent string) {
	if f.budget <= 0 {
		return
	}
	node := n.node
	role := strings.ToLower(axString(node.Role))
	name := sanitizeAXText(axString(node.Name))

	// Wrapper noise is skipped and its children promoted in place.
	if node.Ignored || role == "" || role == "unknown" || role == "inlinetextbox" ||
		((role == "generic" || role == "none" || role == "presentation") && name == "") {
		f.emitChildren(b, n.children, indent)
		return
	}
	f.budget--

	if role == "statictext" {
		if name == "" {
			return
		}
		b.WriteString(indent + "- text: " + strconv.Quote(name) + "\n")
		return
	}

	line := role
	if name != "" {
		line += " " + strconv.Quote(name)
	}

	withRef := interactiveRoles[role] || (contentRoles[role] && name != "") || role == "iframe"
	if withRef && node.BackendDOMNodeID != 0 {
		line += " [ref=" + f.nextRef(node.BackendDOMNodeID) + "]"
	}

	// Iframe content is captured through its own frame, not the parent
	// tree, so the node stays a leaf.
	if role == "iframe" {
		b.WriteString(indent + "- " + line + "\n")
		return
	}

	if value := axString(node.Value); value != "" && len(n.children) == 0 {
		b.WriteString(indent + "- " + line + ": " + strconv.Quote(value) + "\n")
		return
	}

	if len(n.children) == 0 {
		b.WriteString(indent + "- " + line + "\n")
		return
	}
	b.WriteString(indent + "- " + line + ":\n")
	f.emitChildren(b, n.children, indent+"  ")
}

// sanitizeAXText makes accessible names safe to embed in plain YAML
// scalars: no newlines, no colon or comment indicators.
func sanitizeAXText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, ":", "")
	s = strings.ReplaceAll(s, "#", "")
	if r := []rune(s); len(r) > 200 {
		s = string(r[:200])
	}
	return strings.TrimSpace(s)
}
