package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcan/internal/utils"
)

const (
	testEnvironmentPrefixConstant     = "TESTREPOSCAN"
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testConfigFileNameConstant        = "config.yaml"
	testEmbeddedConfigurationConstant = "common:\n  log_level: warn\nreport:\n  workers: 0\n  remote_timeout: 30s\n"
	testEnvironmentLogLevelNameConst  = "TESTREPOSCAN_COMMON_LOG_LEVEL"
	testEnvironmentTimeoutNameConst   = "TESTREPOSCAN_REPORT_REMOTE_TIMEOUT"
)

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
	Report configurationReportFixture `mapstructure:"report"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

type configurationReportFixture struct {
	Workers       int           `mapstructure:"workers"`
	RemoteTimeout time.Duration `mapstructure:"remote_timeout"`
}

func TestConfigurationLoaderLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		fileContent           string
		environment           map[string]string
		expectedConfiguration configurationFixture
	}{
		{
			name: "embedded_configuration_only",
			expectedConfiguration: configurationFixture{
				Common: configurationCommonFixture{LogLevel: "warn"},
				Report: configurationReportFixture{RemoteTimeout: 30 * time.Second},
			},
		},
		{
			name:        "file_overrides_embedded",
			fileContent: "common:\n  log_level: debug\nreport:\n  workers: 3\n",
			expectedConfiguration: configurationFixture{
				Common: configurationCommonFixture{LogLevel: "debug"},
				Report: configurationReportFixture{Workers: 3, RemoteTimeout: 30 * time.Second},
			},
		},
		{
			name:        "environment_overrides_file",
			fileContent: "common:\n  log_level: debug\n",
			environment: map[string]string{
				testEnvironmentLogLevelNameConst: "error",
				testEnvironmentTimeoutNameConst:  "1m30s",
			},
			expectedConfiguration: configurationFixture{
				Common: configurationCommonFixture{LogLevel: "error"},
				Report: configurationReportFixture{RemoteTimeout: 90 * time.Second},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configurationFilePath := ""
			if len(testCase.fileContent) > 0 {
				configurationFilePath = filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testCase.fileContent), 0o600))
			}
			for environmentName, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentName, environmentValue)
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
			configurationLoader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

			loadedConfiguration := configurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, nil, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedConfiguration, loadedConfiguration)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderSearchPaths(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(searchDirectory, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("common:\n  log_level: info\n"), 0o600))

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir(), searchDirectory})

	loadedConfiguration := configurationFixture{}
	metadata, loadError := configurationLoader.LoadConfiguration("", map[string]any{"report.workers": 2}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "info", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, 2, loadedConfiguration.Report.Workers)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderRejectsMissingExplicitFile(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	loadedConfiguration := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration(filepath.Join(testInstance.TempDir(), "absent.yaml"), nil, &loadedConfiguration)
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderRejectsMalformedEmbeddedConfiguration(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	configurationLoader.SetEmbeddedConfiguration([]byte("common: [unterminated"), testConfigurationTypeConstant)

	loadedConfiguration := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
	require.ErrorContains(testInstance, loadError, "failed to merge embedded configuration")
}
