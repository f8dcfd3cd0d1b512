// Package chroot answers questions about the build chroot and the source checkout that feeds it.
package chroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/buildexec/internal/filesystem"
)

const (
	// DefaultMarkerPath exists only inside the build chroot.
	DefaultMarkerPath = "/etc/debian_chroot"
	// DefaultHomeRoot is the home directory root inside the chroot.
	DefaultHomeRoot = "/home"
	// DefaultTrunkDirectory is where the checkout is mounted below the user's chroot home.
	DefaultTrunkDirectory = "trunk"
	// DefaultUserVariable names the environment variable holding the chroot user.
	DefaultUserVariable = "USER"
	// RepositoryMetadataDirectoryName marks the root of a repo checkout.
	RepositoryMetadataDirectoryName = ".repo"

	detailedErrorTemplateConstant = "%w: %s"
	resolvePathTemplateConstant   = "resolve %s: %w"
)

var (
	// ErrRepositoryNotFound indicates that no ancestor of the path contains a .repo directory.
	ErrRepositoryNotFound = errors.New("no .repo directory found")
	// ErrOutsideSourceTree indicates a path that cannot be reinterpreted inside the chroot.
	ErrOutsideSourceTree = errors.New("path is outside the source tree")
	// ErrUserNotSet indicates that the chroot user could not be determined.
	ErrUserNotSet = errors.New("chroot user not set")
)

// Layout describes where the checkout appears inside the chroot.
type Layout struct {
	MarkerPath     string `mapstructure:"marker_path"`
	HomeRoot       string `mapstructure:"home_root"`
	TrunkDirectory string `mapstructure:"trunk_directory"`
	UserVariable   string `mapstructure:"user_variable"`
}

// DefaultLayout returns the standard chroot layout.
func DefaultLayout() Layout {
	return Layout{
		MarkerPath:     DefaultMarkerPath,
		HomeRoot:       DefaultHomeRoot,
		TrunkDirectory: DefaultTrunkDirectory,
		UserVariable:   DefaultUserVariable,
	}
}

func (layout Layout) withDefaults() Layout {
	defaults := DefaultLayout()
	if len(strings.TrimSpace(layout.MarkerPath)) == 0 {
		layout.MarkerPath = defaults.MarkerPath
	}
	if len(strings.TrimSpace(layout.HomeRoot)) == 0 {
		layout.HomeRoot = defaults.HomeRoot
	}
	if len(strings.TrimSpace(layout.TrunkDirectory)) == 0 {
		layout.TrunkDirectory = defaults.TrunkDirectory
	}
	if len(strings.TrimSpace(layout.UserVariable)) == 0 {
		layout.UserVariable = defaults.UserVariable
	}
	return layout
}

// EnvironmentLookup resolves environment variables.
type EnvironmentLookup func(name string) (string, bool)

// Locator resolves chroot state against a file system and environment.
type Locator struct {
	layout            Layout
	fileSystem        filesystem.FileSystem
	environmentLookup EnvironmentLookup
}

// NewLocator constructs a Locator; nil dependencies select the operating system.
func NewLocator(layout Layout, fileSystem filesystem.FileSystem, environmentLookup EnvironmentLookup) *Locator {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	return &Locator{layout: layout.withDefaults(), fileSystem: fileSystem, environmentLookup: environmentLookup}
}

// IsInsideChroot reports whether the chroot marker exists.
func (locator *Locator) IsInsideChroot() bool {
	_, statError := locator.fileSystem.Stat(locator.layout.MarkerPath)
	return statError == nil
}

// FindRepositoryDirectory returns the nearest .repo directory at or above path.
// An empty path starts from the working directory.
func (locator *Locator) FindRepositoryDirectory(path string) (string, error) {
	currentPath, resolveError := locator.absolutePath(path)
	if resolveError != nil {
		return "", resolveError
	}

	for {
		candidate := filepath.Join(currentPath, RepositoryMetadataDirectoryName)
		if candidateInfo, statError := locator.fileSystem.Stat(candidate); statError == nil && candidateInfo.IsDir() {
			return candidate, nil
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			return "", ErrRepositoryNotFound
		}
		currentPath = parentPath
	}
}

// ReinterpretPath maps a path inside the checkout to the same location seen from inside the chroot,
// <home root>/<user>/<trunk>/<path relative to the checkout root>.
func (locator *Locator) ReinterpretPath(path string) (string, error) {
	absolutePath, resolveError := locator.absolutePath(path)
	if resolveError != nil {
		return "", resolveError
	}

	repositoryDirectory, findError := locator.FindRepositoryDirectory(absolutePath)
	if findError != nil {
		if errors.Is(findError, ErrRepositoryNotFound) {
			return "", fmt.Errorf(detailedErrorTemplateConstant, ErrOutsideSourceTree, absolutePath)
		}
		return "", findError
	}

	checkoutRoot := filepath.Dir(repositoryDirectory)
	relativePath, relativeError := filepath.Rel(checkoutRoot, absolutePath)
	if relativeError != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf(detailedErrorTemplateConstant, ErrOutsideSourceTree, absolutePath)
	}

	userName, userFound := locator.environmentLookup(locator.layout.UserVariable)
	if !userFound || len(strings.TrimSpace(userName)) == 0 {
		return "", fmt.Errorf(detailedErrorTemplateConstant, ErrUserNotSet, locator.layout.UserVariable)
	}

	return filepath.Join(locator.layout.HomeRoot, userName, locator.layout.TrunkDirectory, relativePath), nil
}

func (locator *Locator) absolutePath(path string) (string, error) {
	if len(strings.TrimSpace(path)) == 0 {
		workingDirectory, workingDirectoryError := locator.fileSystem.Getwd()
		if workingDirectoryError != nil {
			return "", workingDirectoryError
		}
		path = workingDirectory
	}
	absolutePath, absoluteError := locator.fileSystem.Abs(path)
	if absoluteError != nil {
		return "", fmt.Errorf(resolvePathTemplateConstant, path, absoluteError)
	}
	return filepath.Clean(absolutePath), nil
}
