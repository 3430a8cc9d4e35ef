package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/lexandro/fastfind/config"
	"github.com/lexandro/fastfind/index"
	"github.com/lexandro/fastfind/server"
	"github.com/lexandro/fastfind/tools"
)

func newServeCommand(g *globalOptions) *cobra.Command {
	var idx indexFlags
	var walk walkFlags
	var watch bool
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "serve [root]",
		Short: "Serve search, build and status as MCP tools over stdio",
		Long: `Run an MCP server on stdin/stdout exposing fastfind_search, fastfind_build
and fastfind_status for the configured index.

The index is built on startup when it does not exist yet (or always, with
--rebuild). With --watch it is rebuilt whenever the root directory changes.
Logs never go to stdout, which carries the MCP protocol.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags config.Flags
			idx.apply(cmd, &flags)
			walk.apply(cmd, &flags)
			cfg, logger, err := g.load(cmd, flags)
			if err != nil {
				return err
			}
			root, err := resolveRoot(args, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, root, logger, rebuild, watch)
		},
	}

	idx.register(cmd)
	walk.register(cmd)
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild the index when the root directory changes")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Rebuild the index on startup even if it exists")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, root string, logger *slog.Logger, rebuild, watch bool) error {
	startTime := time.Now()
	rb := newRebuilder(cfg, root, logger)

	logger.Info("starting fastfind MCP server",
		"root", root,
		"index", cfg.IndexPath,
		"layout", cfg.Layout,
		"watch", watch,
	)

	if _, err := os.Stat(cfg.IndexPath); rebuild || errors.Is(err, fs.ErrNotExist) {
		if _, err := rb.Rebuild(ctx); err != nil {
			logger.Error("initial build failed, serving without an index", "error", err)
		}
	}

	if watch {
		go func() {
			err := watchAndRebuild(ctx, rb, root, cfg, logger, func(result index.BuildResult, err error) {
				if err != nil {
					logger.Error("rebuild failed", "error", err)
				}
			})
			if err != nil {
				logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
			}
		}()
	}

	searchHandler, buildHandler, statusHandler := newToolHandlers(cfg, root, rb, startTime, logger)
	mcpServer := server.Setup(Version, searchHandler, buildHandler, statusHandler)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		return err
	}
	return nil
}

// newToolHandlers wires the MCP tools to rb. Search and status hold rb's read lock,
// so they wait for a running rebuild instead of reading a half-written index.
func newToolHandlers(cfg *config.Config, root string, rb *rebuilder, startTime time.Time, logger *slog.Logger) (*tools.SearchHandler, *tools.BuildHandler, *tools.StatusHandler) {
	searchHandler := &tools.SearchHandler{
		IndexPath: cfg.IndexPath,
		Layout:    cfg.RecordLayout(),
		Logger:    logger,
		ReadLock:  rb.ReadLocker(),
	}
	buildHandler := &tools.BuildHandler{DoBuild: rb.Rebuild, Logger: logger}
	statusHandler := &tools.StatusHandler{
		IndexPath: cfg.IndexPath,
		Layout:    cfg.RecordLayout(),
		RootDir:   root,
		StartTime: startTime,
		Logger:    logger,
		ReadLock:  rb.ReadLocker(),
	}
	return searchHandler, buildHandler, statusHandler
}
