package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexandro/fastfind/config"
	"github.com/lexandro/fastfind/index"
	"github.com/lexandro/fastfind/tools"
	"github.com/lexandro/fastfind/watcher"
)

func newWatchCommand(g *globalOptions) *cobra.Command {
	var idx indexFlags
	var walk walkFlags
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Build the index, then rebuild it whenever the tree changes",
		Long: `Build the index once, then watch the root directory and rebuild the whole
index after each burst of filesystem changes. Runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags config.Flags
			idx.apply(cmd, &flags)
			walk.apply(cmd, &flags)
			cfg, logger, err := g.load(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debounce") {
				cfg.Watch.Debounce = debounce
			}
			root, err := resolveRoot(args, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cfg, root, logger, cmd.OutOrStdout())
		},
	}

	idx.register(cmd)
	walk.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period after the last change before rebuilding (default from config)")
	return cmd
}

// runWatch builds once and then rebuilds on every change batch until ctx is done.
func runWatch(ctx context.Context, cfg *config.Config, root string, logger *slog.Logger, out io.Writer) error {
	rb := newRebuilder(cfg, root, logger)
	result, err := rb.Rebuild(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tools.FormatBuildResult(result))

	return watchAndRebuild(ctx, rb, root, cfg, logger, func(result index.BuildResult, err error) {
		if err != nil {
			fmt.Fprintf(out, "rebuild failed: %v\n", err)
			return
		}
		fmt.Fprintln(out, tools.FormatBuildResult(result))
	})
}

// watchAndRebuild rebuilds through rb after every debounced change batch under root
// and hands each outcome to report. It returns when ctx is done.
func watchAndRebuild(ctx context.Context, rb *rebuilder, root string, cfg *config.Config, logger *slog.Logger, report func(index.BuildResult, error)) error {
	w, err := watcher.NewWatcher(root, watcher.Options{
		Ignore:   rb.Ignore(),
		Debounce: cfg.Watch.Debounce,
		Exclude:  indexArtifacts(cfg.IndexPath),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("starting watcher on %s: %w", root, err)
	}
	defer w.Close()
	go w.Start()

	logger.Info("watching for changes", "root", root, "debounce", cfg.Watch.Debounce)
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped", "root", root)
			return nil
		case batch := <-w.Batches():
			if slices.ContainsFunc(batch.Paths, rb.matcher.IsIgnoreFile) {
				logger.Info("ignore file changed, reloading rules")
				rb.ReloadIgnore()
			}
			logger.Info("change detected, rebuilding",
				"paths", len(batch.Paths),
				"created", batch.Ops[watcher.OpCreate],
				"removed", batch.Ops[watcher.OpRemove],
				"renamed", batch.Ops[watcher.OpRename],
				"written", batch.Ops[watcher.OpWrite],
			)

			result, err := rb.Rebuild(ctx)
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, index.ErrIndexBusy) {
				logger.Warn("index busy, skipping rebuild", "index", cfg.IndexPath)
				continue
			}
			report(result, err)
		}
	}
}

// indexArtifacts lists the files a build writes, so writing the index does not
// trigger another rebuild when it lives inside the watched tree.
func indexArtifacts(indexPath string) []string {
	abs, err := filepath.Abs(indexPath)
	if err != nil {
		abs = indexPath
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	return []string{abs, abs + ".lock", ".fastfind-*.tmp"}
}
