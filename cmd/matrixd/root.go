package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/agent"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/config"
)

// Set via -ldflags at release build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string

	// One-shot flags on the root command. When any is set the daemon is
	// not started; the command talks to the modules directly and exits.
	flagBrightness int
	flagIdentify   bool
	flagClear      bool
)

var rootCmd = &cobra.Command{
	Use:   "matrixd",
	Short: "Battery monitor daemon for Framework LED matrix modules",
	Long: `matrixd watches the host battery and renders its state on the
LED matrix input modules: a percentage bar while discharging and a
charging animation while plugged in. It also exposes the modules over a
web interface and MQTT, runs Lua patterns and plays preset animations.

Run without flags to start the daemon. The one-shot flags talk to the
modules directly and exit.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("brightness") {
			return oneShotBrightness(flagBrightness)
		}
		if flagIdentify {
			return oneShotIdentify()
		}
		if flagClear {
			return oneShotClear()
		}
		return runDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (default: the per-user config directory)")
	rootCmd.Flags().IntVar(&flagBrightness, "brightness", -1, "set the display brightness (0-100) and exit")
	rootCmd.Flags().BoolVar(&flagIdentify, "identify", false, "flash each module's slot label and port, then exit")
	rootCmd.Flags().BoolVar(&flagClear, "clear", false, "clear all modules and exit")
}

// loadConfig resolves the --config flag against the default location.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

func runDaemon() error {
	log.Printf("Starting LED matrix battery monitor version: %s, commit: %s, built: %s", version, commit, date)

	if err := config.EnsureAppDir(); err != nil {
		return fmt.Errorf("failed to create app directory: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := agent.NewAgent(cfg)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	go a.Run()

	// Run until interrupted, then shut down in order.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down agent...")
	a.Shutdown()
	log.Println("Agent shut down gracefully.")
	return nil
}
