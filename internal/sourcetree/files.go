package sourcetree

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/temirov/buildexec/internal/filesystem"
)

const (
	globSeparatorConstant          = '/'
	invalidPatternTemplateConstant = "invalid file pattern %q: %w"
	listFilesTemplateConstant      = "list files in %s: %w"
)

// FileLister lists regular files below a directory.
type FileLister struct {
	fileSystem filesystem.FileSystem
}

// NewFileLister constructs a FileLister; a nil file system selects the operating system.
func NewFileLister(fileSystem filesystem.FileSystem) *FileLister {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &FileLister{fileSystem: fileSystem}
}

// ListFiles returns the regular files below baseDirectory, each joined with baseDirectory, in lexical
// order. A non-empty pattern filters the result: a pattern containing "/" is matched against the path
// relative to baseDirectory, any other pattern against the file name; "**" crosses directories.
// A directory without files yields an empty, non-nil slice.
func (lister *FileLister) ListFiles(baseDirectory string, pattern string) ([]string, error) {
	matcher, compileError := compileFilePattern(pattern)
	if compileError != nil {
		return nil, compileError
	}

	files := make([]string, 0)
	walkError := lister.fileSystem.WalkDir(baseDirectory, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !directoryEntry.Type().IsRegular() {
			return nil
		}
		if matcher != nil && !matcher.matches(baseDirectory, path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(listFilesTemplateConstant, baseDirectory, walkError)
	}

	sort.Strings(files)
	return files, nil
}

type filePatternMatcher struct {
	compiled      glob.Glob
	matchRelative bool
}

func compileFilePattern(pattern string) (*filePatternMatcher, error) {
	trimmedPattern := strings.TrimSpace(pattern)
	if len(trimmedPattern) == 0 {
		return nil, nil
	}
	compiled, compileError := glob.Compile(trimmedPattern, globSeparatorConstant)
	if compileError != nil {
		return nil, fmt.Errorf(invalidPatternTemplateConstant, pattern, compileError)
	}
	return &filePatternMatcher{compiled: compiled, matchRelative: strings.ContainsRune(trimmedPattern, globSeparatorConstant)}, nil
}

func (matcher *filePatternMatcher) matches(baseDirectory string, path string) bool {
	if !matcher.matchRelative {
		return matcher.compiled.Match(filepath.Base(path))
	}
	relativePath, relativeError := filepath.Rel(baseDirectory, path)
	if relativeError != nil {
		return false
	}
	return matcher.compiled.Match(filepath.ToSlash(relativePath))
}
