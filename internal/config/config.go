package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no --config flag or env override is given.
const DefaultConfigPath = "~/.pagepilot/config.json5"

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "PAGEPILOT_CONFIG"

// Config is the full server configuration.
//
// Browser-launch fields are read lazily when the browser context is
// created: tools may mutate Session options at runtime, but changes
// take effect only on the next launch, never retroactively.
type Config struct {
	Browser BrowserConfig `json:"browser" yaml:"browser"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// AllowedTools restricts which tools are registered. Empty means all.
	AllowedTools []string `json:"allowed_tools" yaml:"allowed_tools"`

	// ToolRatePerMinute caps tool executions per minute. 0 disables.
	ToolRatePerMinute int `json:"tool_rate_per_minute" yaml:"tool_rate_per_minute"`

	LogLevel string `json:"log_level" yaml:"log_level"` // "debug", "info", "warn", "error"
}

// BrowserConfig controls how the Chrome instance is launched.
type BrowserConfig struct {
	// Kind selects the browser: "chrome" (default), "chromium", "edge".
	Kind string `json:"kind" yaml:"kind"`
	// Bin is an explicit executable path. Empty means auto-detect.
	Bin      string `json:"bin" yaml:"bin"`
	Headless bool   `json:"headless" yaml:"headless"`
	// UserDataDir persists the browser profile between runs.
	UserDataDir string `json:"user_data_dir" yaml:"user_data_dir"`
	// CDPURL connects to an already-running browser instead of launching.
	CDPURL string `json:"cdp_url" yaml:"cdp_url"`
	// ExtraArgs is a shell-style string of additional Chrome flags.
	ExtraArgs string `json:"extra_args" yaml:"extra_args"`
}

// ServerConfig controls the MCP transport.
type ServerConfig struct {
	// Port enables the SSE transport. 0 means stdio (default).
	Port int `json:"port" yaml:"port"`
}

// OutputConfig controls artifact recording.
type OutputConfig struct {
	// TraceDir is where trace archives are written.
	TraceDir string `json:"trace_dir" yaml:"trace_dir"`
	// TraceName is the base filename for the trace archive (no extension).
	TraceName string `json:"trace_name" yaml:"trace_name"`
	// VideoDir enables per-tab video recording when non-empty.
	VideoDir string `json:"video_dir" yaml:"video_dir"`
	// RecordVideo toggles screencast capture for new tabs.
	RecordVideo bool `json:"record_video" yaml:"record_video"`
}

// TracingConfig configures optional OTLP export of tool-call spans.
type TracingConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Endpoint string `json:"endpoint" yaml:"endpoint"` // e.g. "localhost:4317"
	Protocol string `json:"protocol" yaml:"protocol"` // "grpc" (default) or "http"
	Insecure bool   `json:"insecure" yaml:"insecure"`
}

// Default returns a config with all defaults filled in.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Kind:     "chrome",
			Headless: true,
		},
		Output: OutputConfig{
			TraceDir:  "traces",
			TraceName: "trace",
			VideoDir:  "videos",
		},
		Tracing:  TracingConfig{Protocol: "grpc"},
		LogLevel: "info",
	}
}

// ResolvePath expands the config path from flag/env/default, in that order.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return ExpandHome(flagPath)
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return ExpandHome(env)
	}
	return ExpandHome(DefaultConfigPath)
}

// Load reads, parses, and validates the config file at path.
// JSON5 is used for .json/.json5 files, YAML for .yaml/.yml.
// A missing file yields the defaults, not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json5.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values that cannot be defaulted away.
func (c *Config) Validate() error {
	switch c.Browser.Kind {
	case "", "chrome", "chromium", "edge":
	default:
		return fmt.Errorf("unknown browser kind %q", c.Browser.Kind)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Tracing.Protocol {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("unknown tracing protocol %q", c.Tracing.Protocol)
	}
	return nil
}

// ToolAllowed reports whether a tool name passes the allowlist.
func (c *Config) ToolAllowed(name string) bool {
	if len(c.AllowedTools) == 0 {
		return true
	}
	for _, t := range c.AllowedTools {
		if t == name {
			return true
		}
	}
	return false
}

// ExpandHome replaces a leading ~ with the user home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
