package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/lexandro/fastfind/config"
	"github.com/lexandro/fastfind/ignore"
	"github.com/lexandro/fastfind/index"
	"github.com/lexandro/fastfind/tools"
	"github.com/lexandro/fastfind/walker"
)

// indexFlags selects the index file and its layout. Every subcommand takes them.
type indexFlags struct {
	indexPath string
	layout    string
}

func (f *indexFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.indexPath, "index", "", "Index file path (default from config)")
	cmd.Flags().StringVar(&f.layout, "layout", "", "Record layout: merged|split (default from config)")
}

func (f *indexFlags) apply(cmd *cobra.Command, flags *config.Flags) {
	flags.IndexPath = changed(cmd, "index", &f.indexPath)
	flags.Layout = changed(cmd, "layout", &f.layout)
}

// walkFlags controls what a build walks and writes.
type walkFlags struct {
	filesOnly bool
	crossFS   bool
	atomic    bool
	gitignore bool
	skipVCS   bool
	exclude   []string
}

func (f *walkFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.filesOnly, "files-only", false, "Index regular files only")
	cmd.Flags().BoolVar(&f.crossFS, "cross-fs", false, "Descend into directories on other filesystems")
	cmd.Flags().BoolVar(&f.atomic, "atomic", false, "Build into a temporary file and rename it over the index")
	cmd.Flags().BoolVar(&f.gitignore, "gitignore", false, "Leave out paths matched by the root .gitignore")
	cmd.Flags().BoolVar(&f.skipVCS, "skip-vcs", false, "Leave out version control directories (.git, .svn, .hg, ...)")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "Glob pattern to leave out (repeatable)")
}

func (f *walkFlags) apply(cmd *cobra.Command, flags *config.Flags) {
	flags.FilesOnly = changed(cmd, "files-only", &f.filesOnly)
	flags.CrossFilesystems = changed(cmd, "cross-fs", &f.crossFS)
	flags.Atomic = changed(cmd, "atomic", &f.atomic)
	flags.Gitignore = changed(cmd, "gitignore", &f.gitignore)
	flags.SkipVCS = changed(cmd, "skip-vcs", &f.skipVCS)
	flags.Exclude = f.exclude
}

func newBuildCommand(g *globalOptions) *cobra.Command {
	var idx indexFlags
	var walk walkFlags

	cmd := &cobra.Command{
		Use:   "build [root]",
		Short: "Walk a directory tree and write its index",
		Long: `Walk the root directory (default: the configured root, else the working
directory) and write one record per entry below it to the index file.

The previous index is deleted first, so an interrupted build leaves a partial
index behind. Use --atomic to keep the previous index until the new one is
complete.

Examples:
  fastfind build ~/src
  fastfind build --layout split --files-only --skip-vcs .
  fastfind build --exclude 'node_modules' --exclude '**/*.o' /srv`,
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
			return runBuild(cmd.Context(), cfg, root, logger, cmd.OutOrStdout())
		},
	}

	idx.register(cmd)
	walk.register(cmd)
	return cmd
}

// runBuild performs one build and prints its summary to out.
func runBuild(ctx context.Context, cfg *config.Config, root string, logger *slog.Logger, out io.Writer) error {
	rb := newRebuilder(cfg, root, logger)
	result, err := rb.Rebuild(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tools.FormatBuildResult(result))
	return nil
}

// rebuilder runs builds of one configured index, one at a time. Readers of the
// index hold ReadLocker so they never see it half written.
type rebuilder struct {
	mu      sync.RWMutex
	opts    index.BuildOptions
	matcher *ignore.Matcher
}

func newRebuilder(cfg *config.Config, root string, logger *slog.Logger) *rebuilder {
	matcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:   root,
		Patterns:  cfg.Exclude,
		Gitignore: cfg.Gitignore,
		SkipVCS:   cfg.SkipVCS,
	})

	walkOpts := walker.Options{
		FilesOnly:        cfg.FilesOnly,
		CrossFilesystems: cfg.CrossFilesystems,
	}
	if matcher.Active() {
		walkOpts.Ignore = matcher
	}

	return &rebuilder{
		matcher: matcher,
		opts: index.BuildOptions{
			Root:        root,
			Destination: cfg.IndexPath,
			Layout:      cfg.RecordLayout(),
			Walk:        walkOpts,
			Atomic:      cfg.Atomic,
			Logger:      logger,
		},
	}
}

// Rebuild writes a fresh index. The index directory is created if missing.
func (r *rebuilder) Rebuild(ctx context.Context) (index.BuildResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.opts.Destination), 0755); err != nil {
		return index.BuildResult{Destination: r.opts.Destination}, &index.IOError{Op: "mkdir", Path: filepath.Dir(r.opts.Destination), Err: err}
	}
	return index.Build(ctx, r.opts)
}

// ReadLocker returns a lock that excludes rebuilds while held.
func (r *rebuilder) ReadLocker() sync.Locker {
	return r.mu.RLocker()
}

// ReloadIgnore re-reads the .gitignore after it changed on disk.
func (r *rebuilder) ReloadIgnore() {
	r.matcher.Reload()
}

// Ignore returns the walk filter, nil when no ignore rule is configured.
func (r *rebuilder) Ignore() walker.IgnoreChecker {
	return r.opts.Walk.Ignore
}
