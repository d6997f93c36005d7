package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pagepilot/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("pagepilot doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (not found, defaults in effect)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Validity: INVALID (%s)\n", err)
		return
	}
	fmt.Println("  Validity: OK")

	fmt.Printf("  Browser:  %s", cfg.Browser.Kind)
	switch {
	case cfg.Browser.CDPURL != "":
		fmt.Printf(" (remote: %s)\n", cfg.Browser.CDPURL)
	case cfg.Browser.Bin != "":
		if _, err := os.Stat(cfg.Browser.Bin); err != nil {
			fmt.Printf(" (binary %s NOT FOUND)\n", cfg.Browser.Bin)
		} else {
			fmt.Printf(" (binary %s OK)\n", cfg.Browser.Bin)
		}
	default:
		if path, ok := launcher.LookPath(); ok {
			fmt.Printf(" (found at %s)\n", path)
		} else {
			fmt.Println(" (NOT FOUND in standard locations)")
		}
	}

	checkDir("Traces", cfg.Output.TraceDir)
	checkDir("Videos", cfg.Output.VideoDir)

	if cfg.Tracing.Enabled {
		fmt.Printf("  OTLP:     %s (%s)\n", cfg.Tracing.Endpoint, cfg.Tracing.Protocol)
	}
}

func checkDir(label, dir string) {
	fmt.Printf("  %s:   %s", label, dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Printf(" (NOT WRITABLE: %s)\n", err)
		return
	}
	fmt.Println(" (OK)")
}
