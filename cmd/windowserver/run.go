package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	ws "github.com/phanxgames/windowserver"
	"github.com/phanxgames/windowserver/ebitendriver"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the desktop in a window",
	Long: "Open the desktop in a window and feed it real mouse and keyboard input. " +
		"An optional script populates it with components.",
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("title", "windowserver", "Window title")
	runCmd.Flags().Int("scale", 1, "Window scale factor")
	runCmd.Flags().String("script", "", "YAML script to play after startup")
	runCmd.Flags().Bool("watch", false, "Reload --config when the file changes")
	runCmd.Flags().Bool("fps", false, "Show frame and tick rates")
}

func runRun(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	scale, _ := cmd.Flags().GetInt("scale")
	scriptPath, _ := cmd.Flags().GetString("script")
	watch, _ := cmd.Flags().GetBool("watch")
	showFPS, _ := cmd.Flags().GetBool("fps")
	configPath, _ := cmd.Flags().GetString("config")
	if watch && configPath == "" {
		return fmt.Errorf("--watch needs --config")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	driver := ebitendriver.New(cfg.Width, cfg.Height)
	srv, err := ws.NewServer(cfg, logOutbox{cfg.Logger}, driver)
	if err != nil {
		return err
	}
	if scriptPath != "" {
		runner, err := ws.LoadScriptFile(scriptPath)
		if err != nil {
			return err
		}
		srv.SetScriptRunner(runner)
	}
	if watch {
		if err := watchConfig(ctx, cmd, configPath, srv); err != nil {
			return err
		}
	}
	return driver.Run(ctx, srv, ebitendriver.RunConfig{
		Title:         title,
		Scale:         scale,
		ScreenshotKey: ebiten.KeyF12,
		ShowFPS:       showFPS,
	})
}

// watchConfig reloads path on every write and hands the result to srv,
// which applies it at the start of its next tick. The directory is watched
// rather than the file so editors that replace the file are noticed.
func watchConfig(ctx context.Context, cmd *cobra.Command, path string, srv *ws.Server) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watch config: %w", err)
	}
	target := filepath.Clean(path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				c, err := loadConfig(cmd)
				if err != nil {
					slog.Warn("config reload failed", "path", path, "err", err)
					continue
				}
				c.Logger = cfg.Logger
				srv.UpdateConfig(c)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher", "err", err)
			}
		}
	}()
	return nil
}

// logOutbox stands in for an IPC transport: responses and actions are only
// logged.
type logOutbox struct {
	log *slog.Logger
}

func (o logOutbox) Respond(r ws.Response) {
	o.log.Debug("response", "target", r.Target, "transaction", r.Transaction,
		"kind", r.Kind, "status", r.Status, "id", r.ID)
}

func (o logOutbox) Notify(a ws.Action) {
	o.log.Info("action", "target", a.Target, "component", a.Component)
}
