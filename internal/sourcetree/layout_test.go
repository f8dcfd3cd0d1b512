package sourcetree_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/buildexec/internal/filesystem"
	"github.com/temirov/buildexec/internal/sourcetree"
)

func TestSourceRoot(testInstance *testing.T) {
	checkoutRoot := testInstance.TempDir()
	scriptsDirectory := filepath.Join(checkoutRoot, "src", "scripts")
	nestedDirectory := filepath.Join(scriptsDirectory, "lib", "src", "scripts")
	require.NoError(testInstance, os.MkdirAll(nestedDirectory, 0o755))

	testCases := []struct {
		name         string
		path         string
		expectedRoot string
		expectError  bool
	}{
		{name: "scripts_directory", path: scriptsDirectory, expectedRoot: scriptsDirectory},
		{name: "below_scripts", path: filepath.Join(scriptsDirectory, "lib"), expectedRoot: scriptsDirectory},
		{name: "outermost_wins", path: nestedDirectory, expectedRoot: scriptsDirectory},
		{name: "outside_tree", path: checkoutRoot, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sourceRoot, rootError := sourcetree.SourceRoot(filesystem.OSFileSystem{}, testCase.path)
			if testCase.expectError {
				require.ErrorIs(testInstance, rootError, sourcetree.ErrSourceRootNotFound)
				return
			}
			require.NoError(testInstance, rootError)
			require.Equal(testInstance, testCase.expectedRoot, sourceRoot)
		})
	}
}

func TestParseVersionString(testInstance *testing.T) {
	testCases := []struct {
		name            string
		output          string
		expectedVersion string
		expectFound     bool
	}{
		{
			name:            "embedded_in_output",
			output:          "CHROMEOS_BUILD=0\nCHROMEOS_VERSION_STRING=0.9.74.2010_06_30_1427\nCHROMEOS_BRANCH=74\n",
			expectedVersion: "0.9.74.2010_06_30_1427",
			expectFound:     true,
		},
		{
			name:            "stops_at_invalid_character",
			output:          "CHROMEOS_VERSION_STRING=0.9.74-r1",
			expectedVersion: "0.9.74",
			expectFound:     true,
		},
		{name: "absent", output: "CHROMEOS_BUILD=0"},
		{name: "empty_value", output: "CHROMEOS_VERSION_STRING="},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			version, found := sourcetree.ParseVersionString(testCase.output)
			require.Equal(testInstance, testCase.expectFound, found)
			require.Equal(testInstance, testCase.expectedVersion, version)
		})
	}
}

func TestOutputImageDirectory(testInstance *testing.T) {
	outputDirectory := sourcetree.OutputImageDirectory("/home/builder/trunk/src/scripts", "x86-generic", "0.9.74.2010_06_30_1427")
	require.Equal(testInstance, "/home/builder/trunk/src/build/images/x86-generic/0.9.74.2010_06_30_1427-a1", outputDirectory)
}
