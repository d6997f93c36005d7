package tools

import (
	"context"
	"strings"
	"testing"
)

func TestDescribeScroll(t *testing.T) {
	cases := []struct {
		dx, dy float64
		want   []string
	}{
		{0, 500, []string{"down", "500"}},
		{0, -120, []string{"up", "120"}},
		{300, 0, []string{"right", "300"}},
		{-40, 0, []string{"left", "40"}},
		{200, 500, []string{"down", "500", "right", "200"}},
		{0, 0, []string{"nowhere"}},
	}
	for _, c := range cases {
		got := describeScroll(c.dx, c.dy)
		for _, want := range c.want {
			if !strings.Contains(got, want) {
				t.Errorf("describeScroll(%v, %v) = %q, missing %q", c.dx, c.dy, got, want)
			}
		}
	}
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"url":    "https://example.com",
		"count":  float64(3),
		"flag":   true,
		"values": []any{"a", "b", 7},
		"empty":  "",
	}

	if got := strArg(args, "url"); got != "https://example.com" {
		t.Errorf("strArg = %q", got)
	}
	if got := strArg(args, "missing"); got != "" {
		t.Errorf("strArg missing = %q", got)
	}
	if _, err := reqStrArg(args, "empty"); err == nil {
		t.Error("reqStrArg accepted empty string")
	}
	if _, err := reqStrArg(args, "count"); err == nil {
		t.Error("reqStrArg accepted a number")
	}
	if v, ok := numArg(args, "count"); !ok || v != 3 {
		t.Errorf("numArg = %v, %v", v, ok)
	}
	if _, err := reqNumArg(args, "url"); err == nil {
		t.Error("reqNumArg accepted a string")
	}
	if !boolArg(args, "flag") || boolArg(args, "missing") {
		t.Error("boolArg mismatch")
	}
	if got := strSliceArg(args, "values"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("strSliceArg = %v, non-strings should be dropped", got)
	}
}

func TestAll_UniqueNamesAndHandlers(t *testing.T) {
	seen := make(map[string]bool)
	for _, tool := range All() {
		name := tool.Def.Name
		if name == "" {
			t.Fatal("tool with empty name")
		}
		if !strings.HasPrefix(name, "browser_") {
			t.Errorf("tool %q does not follow the browser_ naming scheme", name)
		}
		if seen[name] {
			t.Errorf("duplicate tool name %q", name)
		}
		seen[name] = true
		if tool.Handler == nil {
			t.Errorf("tool %q has no handler", name)
		}
	}
	if len(seen) != 28 {
		t.Errorf("registered %d tools, want 28", len(seen))
	}
}

func TestHandlers_RejectMissingArguments(t *testing.T) {
	required := map[string][]string{
		"browser_navigate":      nil,
		"browser_click":         nil,
		"browser_type":          nil,
		"browser_select_option": nil,
		"browser_press_key":     nil,
		"browser_scroll_to":     nil,
		"browser_evaluate":      nil,
		"browser_resize":        nil,
	}
	for _, tool := range All() {
		if _, ok := required[tool.Def.Name]; !ok {
			continue
		}
		call := &Call{Args: map[string]any{}}
		if _, err := tool.Handler(context.Background(), call); err == nil {
			t.Errorf("%s accepted empty arguments", tool.Def.Name)
		}
	}
}
