package browser

import (
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"gopkg.in/yaml.v3"
)

func axTestNode(id, role, name string, backendID int, childIDs ...string) *proto.AccessibilityAXNode {
	n := &proto.AccessibilityAXNode{
		NodeID:           proto.AccessibilityAXNodeID(id),
		Role:             &proto.AccessibilityAXValue{Value: gson.New(role)},
		BackendDOMNodeID: proto.DOMBackendNodeID(backendID),
	}
	if name != "" {
		n.Name = &proto.AccessibilityAXValue{Value: gson.New(name)}
	}
	for _, cid := range childIDs {
		n.ChildIDs = append(n.ChildIDs, proto.AccessibilityAXNodeID(cid))
	}
	return n
}

func TestFormatAXTree_RefsAndStructure(t *testing.T) {
	nodes := []*proto.AccessibilityAXNode{
		axTestNode("1", "RootWebArea", "Demo", 1, "2", "3", "4"),
		axTestNode("2", "heading", "Welcome", 2),
		axTestNode("3", "button", "Submit", 3),
		axTestNode("4", "generic", "", 4, "5"),
		axTestNode("5", "StaticText", "Hello world", 5),
	}

	refs := make(map[string]proto.DOMBackendNodeID)
	out := formatAXTree(nodes, refs)

	if !strings.Contains(out, `heading "Welcome" [ref=e1]`) {
		t.Errorf("heading ref missing:\n%s", out)
	}
	if !strings.Contains(out, `button "Submit" [ref=e2]`) {
		t.Errorf("button ref missing:\n%s", out)
	}
	if !strings.Contains(out, `text: "Hello world"`) {
		t.Errorf("static text missing:\n%s", out)
	}
	if strings.Contains(out, "generic") {
		t.Errorf("unnamed generic wrapper should be skipped:\n%s", out)
	}

	if got := refs["e1"]; got != 2 {
		t.Errorf("refs[e1] = %d, want 2", got)
	}
	if got := refs["e2"]; got != 3 {
		t.Errorf("refs[e2] = %d, want 3", got)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid yaml: %v\n%s", err, out)
	}
}

func TestFormatAXTree_IframeIsLeaf(t *testing.T) {
	nodes := []*proto.AccessibilityAXNode{
		axTestNode("1", "RootWebArea", "Outer", 1, "2"),
		axTestNode("2", "Iframe", "", 7, "3"),
		axTestNode("3", "button", "Inside", 8),
	}

	refs := make(map[string]proto.DOMBackendNodeID)
	out := formatAXTree(nodes, refs)

	if !strings.Contains(out, "iframe [ref=e1]") {
		t.Errorf("iframe should get a ref:\n%s", out)
	}
	if strings.Contains(out, "Inside") {
		t.Errorf("iframe children must not appear in the parent tree:\n%s", out)
	}
	if got := refs["e1"]; got != 7 {
		t.Errorf("refs[e1] = %d, want 7", got)
	}
}

func TestFormatAXTree_SanitizesNames(t *testing.T) {
	nodes := []*proto.AccessibilityAXNode{
		axTestNode("1", "RootWebArea", "", 1, "2"),
		axTestNode("2", "button", "Save: all\nitems #now", 2),
	}

	out := formatAXTree(nodes, make(map[string]proto.DOMBackendNodeID))
	if !strings.Contains(out, `button "Save all items now" [ref=e1]`) {
		t.Errorf("name not sanitized:\n%s", out)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid yaml: %v\n%s", err, out)
	}
}

func TestAXString_ValueKinds(t *testing.T) {
	cases := []struct {
		in   *proto.AccessibilityAXValue
		want string
	}{
		{nil, ""},
		{&proto.AccessibilityAXValue{Value: gson.New("slider")}, "slider"},
		{&proto.AccessibilityAXValue{Value: gson.New(50)}, "50"},
		{&proto.AccessibilityAXValue{Value: gson.New(true)}, "true"},
		{&proto.AccessibilityAXValue{Value: gson.New(nil)}, ""},
	}
	for _, c := range cases {
		if got := axString(c.in); got != c.want {
			t.Errorf("axString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatAXTree_NumericValue(t *testing.T) {
	nodes := []*proto.AccessibilityAXNode{
		axTestNode("1", "RootWebArea", "", 1, "2"),
		axTestNode("2", "slider", "Volume", 2),
	}
	nodes[1].Value = &proto.AccessibilityAXValue{Value: gson.New(50)}

	out := formatAXTree(nodes, make(map[string]proto.DOMBackendNodeID))
	if !strings.Contains(out, `slider "Volume" [ref=e1]: "50"`) {
		t.Errorf("numeric value missing:\n%s", out)
	}
}

func TestSanitizeAXText_LongMultibyteName(t *testing.T) {
	name := strings.Repeat("日", 300)
	got := sanitizeAXText(name)
	if want := strings.Repeat("日", 200); got != want {
		t.Errorf("truncation split runes: got %d bytes, want %d", len(got), len(want))
	}
	if !strings.HasPrefix(name, got) {
		t.Errorf("truncated name is not a prefix of the original")
	}
}

func TestFormatAXTree_Empty(t *testing.T) {
	out := formatAXTree(nil, make(map[string]proto.DOMBackendNodeID))
	if out != "[]\n" {
		t.Errorf("empty tree = %q, want empty yaml list", out)
	}
}

func TestSplitFlag(t *testing.T) {
	cases := []struct {
		in, name, value string
	}{
		{"--disable-extensions", "disable-extensions", ""},
		{"--proxy-server=http://localhost:8080", "proxy-server", "http://localhost:8080"},
		{"no-sandbox", "no-sandbox", ""},
	}
	for _, c := range cases {
		name, value := splitFlag(c.in)
		if name != c.name || value != c.value {
			t.Errorf("splitFlag(%q) = %q,%q want %q,%q", c.in, name, value, c.name, c.value)
		}
	}
}
