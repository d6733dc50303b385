package main

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prysmaticlabs/signer-protection/cmd"
	"github.com/prysmaticlabs/signer-protection/io/file"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, verbosity, format, logFile string) *cli.Context {
	set := flag.NewFlagSet("test", 0)
	set.String(cmd.VerbosityFlag.Name, verbosity, "")
	set.String(cmd.LogFormat.Name, format, "")
	set.String(cmd.LogFileName.Name, logFile, "")
	set.String(cmd.ConfigFileFlag.Name, "", "")
	return cli.NewContext(&cli.App{}, set, nil)
}

func saveLogger() func() {
	logger := logrus.StandardLogger()
	level, formatter := logger.GetLevel(), logger.Formatter
	hooks := logger.ReplaceHooks(make(logrus.LevelHooks))
	return func() {
		logger.SetLevel(level)
		logger.SetFormatter(formatter)
		logger.ReplaceHooks(hooks)
	}
}

func TestConfigureLogging(t *testing.T) {
	restore := saveLogger()
	defer restore()

	tests := []struct {
		name      string
		verbosity string
		format    string
		wantErr   string
		wantLevel logrus.Level
		wantType  logrus.Formatter
	}{
		{name: "json", verbosity: "debug", format: "json", wantLevel: logrus.DebugLevel, wantType: &logrus.JSONFormatter{}},
		{name: "unknown format", verbosity: "info", format: "xml", wantErr: "unknown log format xml"},
		{name: "unknown verbosity", verbosity: "loud", format: "text", wantErr: "could not parse --verbosity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := configureLogging(prometheus.NewRegistry())(newContext(t, tt.verbosity, tt.format, ""))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, logrus.GetLevel())
			assert.IsType(t, tt.wantType, logrus.StandardLogger().Formatter)
		})
	}
}

func TestConfigureLogging_LogFile(t *testing.T) {
	restore := saveLogger()
	defer restore()

	reg := prometheus.NewRegistry()
	logFile := filepath.Join(t.TempDir(), "logs", "signer-protection.log")
	require.NoError(t, configureLogging(reg)(newContext(t, "info", "text", logFile)))
	assert.True(t, file.FileExists(logFile))
	log.Info("Counted")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "log_entries_total", families[0].GetName())

	contents, err := file.ReadFileAsBytes(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "Counted")
}
