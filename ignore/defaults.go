package ignore

// VCSDirectories are version control metadata directories skipped when
// MatcherOptions.SkipVCS is set.
var VCSDirectories = []string{
	".git",
	".svn",
	".hg",
	".bzr",
	"_darcs",
	"CVS",
}

// GitignoreFile is the ignore file read from the root directory.
const GitignoreFile = ".gitignore"
