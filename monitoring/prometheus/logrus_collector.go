// Package prometheus exposes logrus activity as prometheus counters.
package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// LogrusCollector is a logrus hook to collect log counters.
type LogrusCollector struct {
	counterVec *prometheus.CounterVec
}

var supportedLevels = []logrus.Level{logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}

const prefixKey = "prefix"
const defaultprefix = "global"

// NewLogrusCollector registers the log_entries_total counter with the given registerer
// and returns a logrus hook feeding it. A nil registerer leaves the counter unregistered.
func NewLogrusCollector(reg prometheus.Registerer) *LogrusCollector {
	return &LogrusCollector{
		counterVec: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "log_entries_total",
			Help: "Total number of log messages.",
		}, []string{"level", "prefix"}),
	}
}

// Fire is called on every log call.
func (hook *LogrusCollector) Fire(entry *logrus.Entry) error {
	prefix := defaultprefix
	if prefixValue, ok := entry.Data[prefixKey]; ok {
		prefix, ok = prefixValue.(string)
		if !ok {
			return errors.New("prefix is not a string")
		}
	}
	hook.counterVec.WithLabelValues(entry.Level.String(), prefix).Inc()
	return nil
}

// Levels return a slice of levels supported by this hook;
func (_ *LogrusCollector) Levels() []logrus.Level {
	return supportedLevels
}
