package cli_test

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/buildexec/cmd/cli"
	"github.com/temirov/buildexec/internal/chroot"
	"github.com/temirov/buildexec/internal/run"
)

func TestBuiltinConfigurationMatchesPackageDefaults(t *testing.T) {
	configurationData, configurationType := cli.BuiltinConfiguration()
	require.Equal(t, "yaml", configurationType)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(t, viperInstance.ReadConfig(bytes.NewReader(configurationData)))

	var configuration cli.ApplicationConfiguration
	require.NoError(t, viperInstance.Unmarshal(&configuration))

	require.Equal(t, "info", configuration.Common.LogLevel)
	require.Equal(t, "console", configuration.Common.LogFormat)
	require.Equal(t, run.DefaultConfiguration(), configuration.Execution)
	require.Equal(t, chroot.DefaultLayout(), configuration.Chroot)
}

func TestBuiltinConfigurationReturnsCopy(t *testing.T) {
	firstCopy, _ := cli.BuiltinConfiguration()
	require.NotEmpty(t, firstCopy)
	firstCopy[0] = '#'

	secondCopy, _ := cli.BuiltinConfiguration()
	require.NotEqual(t, firstCopy[0], secondCopy[0])
}

func TestNewApplicationBuildsCommandHierarchy(t *testing.T) {
	application, creationError := cli.NewApplication()
	require.NoError(t, creationError)
	require.NotNil(t, application)
}
