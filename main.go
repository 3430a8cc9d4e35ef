package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexandro/fastfind/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "fastfind",
		Short: "Index a directory tree into a flat file and search it by substring",
		Long: `fastfind walks a directory tree once and writes every path it finds into a
plain text index, one record per line. Searches scan that file instead of the
tree, so lookups stay fast on large or slow filesystems.

The merged layout stores each full path. The split layout stores the parent
directory and the file name separated by a tab, which allows matching on file
names alone. Build and search must use the same layout.

Settings are read from ~/.config/fastfind/config.yaml when present.
CLI flags override configuration file settings.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "Config file path")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Log file path (default: stderr)")

	cmd.AddCommand(newBuildCommand(opts))
	cmd.AddCommand(newSearchCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newRegisterCommand())

	return cmd
}

// load reads the config file, applies the command's flag overrides and sets up logging.
func (g *globalOptions) load(cmd *cobra.Command, flags config.Flags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, nil, err
	}

	flags.LogLevel = changed(cmd, "log-level", &g.logLevel)
	flags.LogFile = changed(cmd, "log-file", &g.logFile)
	if err := cfg.MergeWithFlags(flags); err != nil {
		return nil, nil, err
	}

	return cfg, setupLogger(cfg.LogLevel, cfg.LogFile), nil
}

// changed returns value if the named flag was set on the command line, nil otherwise.
func changed[T any](cmd *cobra.Command, name string, value *T) *T {
	if cmd.Flags().Changed(name) {
		return value
	}
	return nil
}

// resolveRoot picks the directory to index: the argument, then the configured root,
// then the working directory. Symlinks are resolved so ignore rules and records agree.
func resolveRoot(args []string, cfg *config.Config) (string, error) {
	root := cfg.Root
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %s: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
