// Package cmd assembles the pagepilot command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pagepilot/internal/config"
)

// Version is the release version, overridable at build time with
// -ldflags "-X ...cmd.Version=".
var Version = "0.1.0"

var (
	configFlag  string
	verboseFlag bool
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pagepilot",
		Short:   "MCP server exposing browser automation tools",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default action is serving, so `pagepilot` alone works as
			// an MCP stdio command.
			return runServe(cmd, args)
		},
	}
	cmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")
	addServeFlags(cmd)

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(doctorCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	return config.ResolvePath(configFlag)
}

// newLogger builds the process logger. Logs go to stderr: stdout
// belongs to the MCP stdio transport.
func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	if verboseFlag {
		level = "debug"
	}
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
