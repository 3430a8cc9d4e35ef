// Package ignore decides which paths an index build leaves out.
//
// Nothing is ignored unless asked for: exclude patterns, the root .gitignore and
// version control directories are each opt-in.
package ignore

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher determines whether a path should be left out of an index.
// Thread-safe: Reload() acquires a write lock, ShouldIgnore()/ShouldIgnoreDir() acquire a read lock.
type Matcher struct {
	mu        sync.RWMutex
	rootDir   string
	gitIgnore gitignore.GitIgnore
	patterns  []string
	useGit    bool
	skipVCS   bool
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir   string
	Patterns  []string // doublestar globs, matched against the root-relative path and the base name
	Gitignore bool     // Honor <RootDir>/.gitignore
	SkipVCS   bool     // Skip VCSDirectories
}

// NewMatcher creates an ignore matcher for the given root.
func NewMatcher(options MatcherOptions) *Matcher {
	patterns := make([]string, 0, len(options.Patterns))
	for _, p := range options.Patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p != "" {
			patterns = append(patterns, p)
		}
	}

	matcher := &Matcher{
		rootDir:  options.RootDir,
		patterns: patterns,
		useGit:   options.Gitignore,
		skipVCS:  options.SkipVCS,
	}
	if matcher.useGit {
		matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, GitignoreFile), options.RootDir)
	}
	return matcher
}

// Active reports whether any rule is configured. A matcher with no rules never ignores anything.
func (m *Matcher) Active() bool {
	return len(m.patterns) > 0 || m.useGit || m.skipVCS
}

// ShouldIgnore returns true if the file at absolutePath should be left out.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	return m.matches(absolutePath, false)
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if m.skipVCS && slices.Contains(VCSDirectories, filepath.Base(absolutePath)) {
		return true
	}
	return m.matches(absolutePath, true)
}

// IsIgnoreFile reports whether path is the .gitignore this matcher reads.
func (m *Matcher) IsIgnoreFile(path string) bool {
	return m.useGit && filepath.Clean(path) == filepath.Join(m.rootDir, GitignoreFile)
}

func (m *Matcher) matches(absolutePath string, isDir bool) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)

	if m.matchesPatterns(relativePath) {
		return true
	}

	// Relative() doesn't require the path to exist on disk
	if m.gitIgnore != nil {
		match := m.gitIgnore.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}
	return false
}

// matchesPatterns checks the root-relative path and its base name against the exclude patterns.
func (m *Matcher) matchesPatterns(relativePath string) bool {
	baseName := relativePath[strings.LastIndex(relativePath, "/")+1:]
	for _, pattern := range m.patterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads the .gitignore file from disk.
func (m *Matcher) Reload() {
	if !m.useGit {
		return
	}
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, GitignoreFile), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses the io.Reader constructor so the file handle is closed before returning.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
