package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javajack/rowcalc"
)

// Watcher reports changes to a single file. It watches the parent directory
// so editors that save by renaming a temporary file are still seen.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration
	onChange func()
}

// NewWatcher starts watching path. onChange runs on the goroutine calling
// Run, once per burst of events within the debounce window.
func NewWatcher(path string, debounce time.Duration, logger *zap.Logger, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     abs,
		watcher:  fw,
		logger:   logger,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run delivers change notifications until ctx is done, then releases the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("settings file event", zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.onChange()
		}
	}
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recalculate and print whenever the settings file changes",
		Long: `Print the recalculated rows, then again every time the settings file is
written. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			show := func() {
				sheet := rowcalc.OpenSheet(rootOpts.resource(), rootOpts.sheetOptions()...)
				if err := writeSheet(out, rootOpts.Format, sheet); err != nil {
					rootOpts.Logger.Warn("write output", zap.Error(err))
				}
			}

			w, err := NewWatcher(rootOpts.Settings, debounce, rootOpts.Logger, show)
			if err != nil {
				return exitf(ExitBadInput, "watch failed: %w", err)
			}
			show()
			return w.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "wait this long after the last change before recalculating")
	return cmd
}
