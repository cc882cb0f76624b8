package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render SCRIPT",
	Short: "Play a script offscreen and write screenshots",
	Long: "Play a YAML script against an offscreen server. Screenshot steps and the final " +
		"frame are written as PNG files to the output directory.",
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("out", "o", "", "Output directory (default: screenshot_dir from config)")
	renderCmd.Flags().Int("max-frames", 10000, "Give up after this many frames")
	renderCmd.Flags().String("final", "final", "Label of the screenshot taken after the last step (empty to skip)")
}

func runRender(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	maxFrames, _ := cmd.Flags().GetInt("max-frames")
	final, _ := cmd.Flags().GetString("final")

	c := cfg
	if out != "" {
		c.ScreenshotDir = out
	}
	// The pointer is not visible in offscreen renders unless a config asks.
	if !cmd.Flags().Changed("config") {
		c.Cursor = false
	}

	srv, runner, err := runScript(c, args[0], maxFrames)
	if srv != nil && final != "" {
		srv.Screenshot(final)
		srv.Tick()
	}
	if err != nil {
		return err
	}

	dir, _ := filepath.Abs(c.ScreenshotDir)
	fmt.Fprintf(cmd.OutOrStdout(), "rendered %d frames, %d responses, %d actions into %s\n",
		srv.Frames(), len(runner.Responses()), len(runner.Actions()), dir)
	return nil
}
