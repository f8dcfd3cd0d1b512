package sourcetree

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/temirov/buildexec/internal/filesystem"
)

const (
	sourceDirectoryNameConstant             = "src"
	scriptsDirectoryNameConstant            = "scripts"
	buildDirectoryNameConstant              = "build"
	imagesDirectoryNameConstant             = "images"
	buildAttemptSuffixConstant              = "a1"
	versionAttemptSeparatorConstant         = "-"
	sourceRootNotFoundTemplateConstant      = "%w: %s"
	resolveWorkingDirectoryTemplateConstant = "resolve working directory: %w"
)

// ErrSourceRootNotFound indicates a path that is not inside a src/scripts directory.
var ErrSourceRootNotFound = errors.New("src/scripts not found")

var versionStringPattern = regexp.MustCompile(`CHROMEOS_VERSION_STRING=([0-9_.]+)`)

// SourceRoot returns the outermost src/scripts directory at or above path. An empty path starts from
// the working directory.
func SourceRoot(fileSystem filesystem.FileSystem, path string) (string, error) {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if len(strings.TrimSpace(path)) == 0 {
		workingDirectory, workingDirectoryError := fileSystem.Getwd()
		if workingDirectoryError != nil {
			return "", fmt.Errorf(resolveWorkingDirectoryTemplateConstant, workingDirectoryError)
		}
		path = workingDirectory
	}
	absolutePath, absoluteError := fileSystem.Abs(path)
	if absoluteError != nil {
		return "", fmt.Errorf(resolveWorkingDirectoryTemplateConstant, absoluteError)
	}

	sourceRoot := ""
	currentPath := filepath.Clean(absolutePath)
	for {
		if filepath.Base(currentPath) == scriptsDirectoryNameConstant && filepath.Base(filepath.Dir(currentPath)) == sourceDirectoryNameConstant {
			sourceRoot = currentPath
		}
		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			break
		}
		currentPath = parentPath
	}

	if len(sourceRoot) == 0 {
		return "", fmt.Errorf(sourceRootNotFoundTemplateConstant, ErrSourceRootNotFound, absolutePath)
	}
	return sourceRoot, nil
}

// ParseVersionString extracts the CHROMEOS_VERSION_STRING value from build script output.
func ParseVersionString(output string) (string, bool) {
	match := versionStringPattern.FindStringSubmatch(output)
	if len(match) < 2 || len(match[1]) == 0 {
		return "", false
	}
	return match[1], true
}

// OutputImageDirectory returns <parent of src>/build/images/<board>/<version>-a1 for a src/scripts root.
// The build attempt is always the first one.
func OutputImageDirectory(sourceRoot string, board string, version string) string {
	return filepath.Join(filepath.Dir(sourceRoot), buildDirectoryNameConstant, imagesDirectoryNameConstant, board, version+versionAttemptSeparatorConstant+buildAttemptSuffixConstant)
}
