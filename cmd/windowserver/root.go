package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	ws "github.com/phanxgames/windowserver"
)

// Set with -ldflags "-X main.version=..." at release time.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// cfg is the effective configuration after the config file and flags.
var cfg ws.Config

var rootCmd = &cobra.Command{
	Use:           "windowserver",
	Short:         "Compositing window server",
	Long:          "A compositing window server: a retained tree of windows and widgets, driven by client requests and pointer/keyboard input.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate)
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Panic on tree invariant violations and log frame stats")
	rootCmd.PersistentFlags().Int("width", 0, "Screen width in pixels (overrides config)")
	rootCmd.PersistentFlags().Int("height", 0, "Screen height in pixels (overrides config)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		level, err := ws.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		cfg.Logger = logger
		return nil
	}
}

// loadConfig reads --config, if given, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (ws.Config, error) {
	c := ws.DefaultConfig()
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		var err error
		if c, err = ws.LoadConfig(path); err != nil {
			return c, err
		}
	}
	applyFlags(cmd, &c)
	return c, c.Validate()
}

// applyFlags overrides c with the persistent flags the user set explicitly.
func applyFlags(cmd *cobra.Command, c *ws.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("debug") {
		c.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("width") {
		c.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("height") {
		c.Height, _ = flags.GetInt("height")
	}
}
