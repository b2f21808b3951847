package pdk

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Statter is the interface for collecting counters and timings while data
// moves through the kit.
type Statter interface {
	Count(name string, value int64, rate float64, tags ...string)
	Gauge(name string, value float64, rate float64, tags ...string)
	Histogram(name string, value float64, rate float64, tags ...string)
	Set(name string, value string, rate float64, tags ...string)
	Timing(name string, value time.Duration, rate float64, tags ...string)
}

// NopStatter is a Statter which does nothing.
type NopStatter struct{}

func (NopStatter) Count(name string, value int64, rate float64, tags ...string) {}

func (NopStatter) Gauge(name string, value float64, rate float64, tags ...string) {}

func (NopStatter) Histogram(name string, value float64, rate float64, tags ...string) {}

func (NopStatter) Set(name string, value string, rate float64, tags ...string) {}

func (NopStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {}

// Logger is the logging interface used throughout the kit.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// NopLogger is a Logger which does nothing.
type NopLogger struct{}

func (NopLogger) Printf(format string, v ...interface{}) {}

func (NopLogger) Debugf(format string, v ...interface{}) {}

// ZapLogger is a Logger backed by a zap SugaredLogger. Printf logs at info
// level and Debugf at debug level.
type ZapLogger struct {
	*zap.SugaredLogger
}

// NewZapLogger wraps l as a Logger.
func NewZapLogger(l *zap.Logger) ZapLogger {
	return ZapLogger{l.Sugar()}
}

// NewProductionLogger builds a JSON zap logger writing to stderr. If verbose
// is set, debug messages are included.
func NewProductionLogger(verbose bool) (*zap.Logger, error) {
	conf := zap.NewProductionConfig()
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		conf.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return conf.Build()
}

func (z ZapLogger) Printf(format string, v ...interface{}) {
	z.Infof(format, v...)
}

func (z ZapLogger) Debugf(format string, v ...interface{}) {
	z.SugaredLogger.Debugf(format, v...)
}
