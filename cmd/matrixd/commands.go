package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/config"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/matrix"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/preset"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Flash each module's slot label and port name on its display",
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShotIdentify()
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all module displays",
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShotClear()
	},
}

var brightnessCmd = &cobra.Command{
	Use:   "brightness VALUE",
	Short: "Set the display brightness (0-100)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("brightness must be a number, got %q", args[0])
		}
		return oneShotBrightness(value)
	},
}

var patternCmd = &cobra.Command{
	Use:   "pattern NAME",
	Short: "Draw a built-in pattern on all modules",
	Long: "Draw a built-in pattern on all modules.\n\nAvailable patterns:\n  " +
		strings.Join(matrix.PatternNames(), "\n  "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachModule(func(dev *matrix.Device) error {
			return matrix.DrawPattern(dev, args[0])
		})
	},
}

var percentCmd = &cobra.Command{
	Use:   "percent VALUE",
	Short: "Show a percentage bar on all modules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("percentage must be a number, got %q", args[0])
		}
		return forEachModule(func(dev *matrix.Device) error {
			return matrix.ShowPercentage(dev, value)
		})
	},
}

var textCmd = &cobra.Command{
	Use:   "text STRING",
	Short: "Show up to five characters on all modules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachModule(func(dev *matrix.Device) error {
			return matrix.ShowString(dev, args[0])
		})
	},
}

var sleepCmd = &cobra.Command{
	Use:   "sleep on|off",
	Short: "Put all modules to sleep or wake them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sleeping bool
		switch args[0] {
		case "on":
			sleeping = true
		case "off":
			sleeping = false
		default:
			return fmt.Errorf("expected 'on' or 'off', got %q", args[0])
		}
		return forEachModule(func(dev *matrix.Device) error {
			return matrix.SetSleep(dev, sleeping)
		})
	},
}

var pwmFreqCmd = &cobra.Command{
	Use:   "pwm-freq HZ",
	Short: "Set the LED PWM frequency (29000, 3600, 1800 or 900 Hz)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hz, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("frequency must be a number, got %q", args[0])
		}
		return forEachModule(func(dev *matrix.Device) error {
			return matrix.SetPWMFreq(dev, hz)
		})
	},
}

var installPresetsOverwrite bool

var installPresetsCmd = &cobra.Command{
	Use:   "install-presets",
	Short: "Download the bundled preset animations into the presets directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		in := preset.NewInstaller(cfg.PresetsDir)
		in.Overwrite = installPresetsOverwrite
		res, err := in.Install()
		if err != nil {
			return err
		}
		fmt.Printf("Installed %d, skipped %d, failed %d\n", len(res.Installed), len(res.Skipped), len(res.Failed))
		if len(res.Failed) > 0 {
			return fmt.Errorf("some presets failed to install: %s", strings.Join(res.Failed, ", "))
		}
		return nil
	},
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the configuration and data paths in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.EnsureAppDir(); err != nil {
			return err
		}
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		fmt.Printf("config:    %s\n", path)
		fmt.Printf("patterns:  %s\n", cfg.PatternsDir)
		fmt.Printf("presets:   %s\n", cfg.PresetsDir)
		fmt.Printf("schedules: %s\n", cfg.SchedulesFile)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("matrixd %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	installPresetsCmd.Flags().BoolVar(&installPresetsOverwrite, "overwrite", false, "replace presets even when the local copy is up to date")

	rootCmd.AddCommand(
		identifyCmd,
		clearCmd,
		brightnessCmd,
		patternCmd,
		percentCmd,
		textCmd,
		sleepCmd,
		pwmFreqCmd,
		installPresetsCmd,
		pathsCmd,
		versionCmd,
	)
}
