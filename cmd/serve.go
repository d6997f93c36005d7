package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pagepilot/internal/config"
	mcpserver "github.com/nextlevelbuilder/pagepilot/internal/mcp"
	"github.com/nextlevelbuilder/pagepilot/internal/session"
	"github.com/nextlevelbuilder/pagepilot/internal/tracing"
	"github.com/nextlevelbuilder/pagepilot/pkg/browser"
)

var (
	browserFlag     string
	headlessFlag    bool
	headedFlag      bool
	userDataDirFlag string
	cdpFlag         string
	portFlag        int
	outputDirFlag   string
	recordVideoFlag bool
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio by default, SSE with --port)",
		RunE:  runServe,
	}
	addServeFlags(cmd)
	return cmd
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&browserFlag, "browser", "", "browser to launch: chrome, chromium or edge")
	cmd.Flags().BoolVar(&headlessFlag, "headless", false, "force headless mode")
	cmd.Flags().BoolVar(&headedFlag, "headed", false, "force a visible browser window")
	cmd.Flags().StringVar(&userDataDirFlag, "user-data-dir", "", "browser profile directory")
	cmd.Flags().StringVar(&cdpFlag, "cdp-endpoint", "", "attach to a running browser over CDP instead of launching")
	cmd.Flags().IntVar(&portFlag, "port", 0, "serve MCP over SSE on this port instead of stdio")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "directory for traces and videos")
	cmd.Flags().BoolVar(&recordVideoFlag, "record-video", false, "record a video per tab")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)

	logger := newLogger(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, "pagepilot", Version)
	if err != nil {
		return err
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	manager := browser.NewManager(browser.Options{
		Kind:        cfg.Browser.Kind,
		Bin:         cfg.Browser.Bin,
		Headless:    cfg.Browser.Headless,
		UserDataDir: cfg.Browser.UserDataDir,
		CDPURL:      cfg.Browser.CDPURL,
		ExtraArgs:   cfg.Browser.ExtraArgs,
	}, logger)

	sess := session.New(manager, session.Options{
		RecordVideo: cfg.Output.RecordVideo,
		VideoDir:    cfg.Output.VideoDir,
	}, logger)
	defer func() {
		_ = sess.Close()
	}()

	srv := mcpserver.New("pagepilot", Version, cfg, sess, logger)

	if watcher, err := config.NewWatcher(cfgPath); err != nil {
		logger.Warn("config hot reload unavailable", "error", err)
	} else {
		watcher.OnChange(func(next *config.Config) {
			srv.Reload(next)
		})
		if err := watcher.Start(); err != nil {
			logger.Warn("config hot reload unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	if cfg.Server.Port > 0 {
		return srv.ServeSSE(ctx, cfg.Server.Port)
	}
	logger.Info("serving MCP over stdio")
	return srv.ServeStdio(ctx)
}

// applyFlagOverrides lets command-line flags win over file config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("browser") {
		cfg.Browser.Kind = browserFlag
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = true
	}
	if flags.Changed("headed") {
		cfg.Browser.Headless = false
	}
	if flags.Changed("user-data-dir") {
		cfg.Browser.UserDataDir = userDataDirFlag
	}
	if flags.Changed("cdp-endpoint") {
		cfg.Browser.CDPURL = cdpFlag
	}
	if flags.Changed("port") {
		cfg.Server.Port = portFlag
	}
	if flags.Changed("output-dir") {
		cfg.Output.TraceDir = outputDirFlag
		cfg.Output.VideoDir = outputDirFlag
	}
	if flags.Changed("record-video") {
		cfg.Output.RecordVideo = recordVideoFlag
	}
}
