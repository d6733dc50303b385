// Package logs configures the logrus formatters used by the binaries and creates
// a file logger instance that writes all logs that are written to stdout.
package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	joonix "github.com/joonix/log"
	"github.com/prysmaticlabs/signer-protection/config/params"
	"github.com/prysmaticlabs/signer-protection/io/file"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var _ = logrus.Hook(&WriterHook{})

// WriterHook is a hook that writes logs of specified LogLevels to the file logger.
type WriterHook struct {
	LogLevels  []logrus.Level
	fileLogger *logrus.Logger
}

// Fire will be called when some logging function is called with current hook.
// It will format log entry to string and write it to the file logger.
func (hook *WriterHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	line = strings.TrimSuffix(line, "\n")
	hook.fileLogger.Println(line)
	return nil
}

// Levels defines on which log levels this hook would trigger.
func (hook *WriterHook) Levels() []logrus.Level {
	return hook.LogLevels
}

// Formatter returns the logrus formatter registered under the given name. Supported
// names are text, fluentd and json.
func Formatter(format string, disableColors bool) (logrus.Formatter, error) {
	switch format {
	case "text":
		formatter := new(prefixed.TextFormatter)
		formatter.TimestampFormat = "2006-01-02 15:04:05"
		formatter.FullTimestamp = true
		// If persistent log files are written - we disable the log messages coloring because
		// the colors are ANSI codes and seen as gibberish in the log files.
		formatter.DisableColors = disableColors
		return formatter, nil
	case "fluentd":
		return joonix.NewFormatter(), nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown log format %s", format)
	}
}

// ConfigurePersistentLogging adds a log-to-file writer hook to the given logger. The writer hook appends new
// logs to the specified log file. The parent directory is created with 0700 permissions when missing.
func ConfigurePersistentLogging(logger *logrus.Logger, logFileName string, logFileFormatName string) error {
	logger.WithField("logFileName", logFileName).Info("Logs will be made persistent")
	if err := file.MkdirAll(filepath.Dir(logFileName)); err != nil {
		return err
	}
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, params.SignerIoConfig().ReadWritePermissions) // #nosec G304
	if err != nil {
		return err
	}
	formatter, err := Formatter(logFileFormatName, true /* disable colors */)
	if err != nil {
		return err
	}
	fileLogger := &logrus.Logger{
		Out:       f,
		Formatter: formatter,
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.TraceLevel,
	}
	logger.AddHook(&WriterHook{
		LogLevels:  logrus.AllLevels,
		fileLogger: fileLogger,
	})
	logger.Info("File logging initialized")
	return nil
}
