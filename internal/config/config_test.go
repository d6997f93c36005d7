package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Browser.Kind != "chrome" {
		t.Errorf("expected default browser kind chrome, got %q", cfg.Browser.Kind)
	}
	if !cfg.Browser.Headless {
		t.Error("expected headless default true")
	}
	if cfg.Output.TraceName != "trace" {
		t.Errorf("expected default trace name, got %q", cfg.Output.TraceName)
	}
}

func TestLoad_JSON5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	content := `{
		// comments are allowed
		browser: { kind: "chromium", headless: false },
		allowed_tools: ["browser_navigate", "browser_snapshot"],
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Browser.Kind != "chromium" {
		t.Errorf("expected chromium, got %q", cfg.Browser.Kind)
	}
	if cfg.Browser.Headless {
		t.Error("expected headless false")
	}
	if len(cfg.AllowedTools) != 2 {
		t.Errorf("expected 2 allowed tools, got %d", len(cfg.AllowedTools))
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "browser:\n  kind: edge\noutput:\n  trace_dir: /tmp/traces\n  trace_name: session\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Browser.Kind != "edge" {
		t.Errorf("expected edge, got %q", cfg.Browser.Kind)
	}
	if cfg.Output.TraceDir != "/tmp/traces" {
		t.Errorf("unexpected trace dir %q", cfg.Output.TraceDir)
	}
	if cfg.Output.TraceName != "session" {
		t.Errorf("unexpected trace name %q", cfg.Output.TraceName)
	}
}

func TestLoad_InvalidKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	if err := os.WriteFile(path, []byte(`{browser: {kind: "netscape"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown browser kind")
	}
}

func TestToolAllowed(t *testing.T) {
	cfg := Default()
	if !cfg.ToolAllowed("browser_click") {
		t.Error("empty allowlist should allow everything")
	}

	cfg.AllowedTools = []string{"browser_navigate"}
	if !cfg.ToolAllowed("browser_navigate") {
		t.Error("listed tool should be allowed")
	}
	if cfg.ToolAllowed("browser_click") {
		t.Error("unlisted tool should be denied")
	}
}

func TestNormalizeArtifactName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "artifact"},
		{"trace", "trace"},
		{"My Trace!", "my-trace"},
		{"..hidden..", "hidden"},
		{"UPPER_case.zip", "upper_case.zip"},
		{"---", "artifact"},
	}
	for _, tt := range tests {
		if got := NormalizeArtifactName(tt.in); got != tt.want {
			t.Errorf("NormalizeArtifactName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
