package mock

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patentdata/pdk"
)

// RecordingStatter is used for testing. It records counts and gauges.
type RecordingStatter struct {
	mu     sync.Mutex
	Counts map[string]int64
	Gauges map[string]float64
}

// Count implements Count.
func (r *RecordingStatter) Count(name string, value int64, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Counts == nil {
		r.Counts = make(map[string]int64)
	}
	r.Counts[name] += value
}

// Gauge implements Gauge.
func (r *RecordingStatter) Gauge(name string, value float64, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Gauges == nil {
		r.Gauges = make(map[string]float64)
	}
	r.Gauges[name] = value
}

// Histogram implements Histogram.
func (r *RecordingStatter) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set implements Set.
func (r *RecordingStatter) Set(name string, value string, rate float64, tags ...string) {}

// Timing implements Timing.
func (r *RecordingStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {}

// Get returns the recorded count for name.
func (r *RecordingStatter) Get(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Counts[name]
}

// RecordingSink is a pdk.Sink which keeps everything written to it.
type RecordingSink struct {
	mu     sync.Mutex
	Tables pdk.Tables
	Writes int
	Closed bool
	Err    error
}

// Write implements pdk.Sink.
func (r *RecordingSink) Write(t *pdk.Tables) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Writes++
	r.Tables.Append(t)
	return nil
}

// Close implements pdk.Sink.
func (r *RecordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
	return nil
}

// Logger is a pdk.Logger which keeps formatted messages.
type Logger struct {
	mu   sync.Mutex
	Msgs []string
}

// Printf implements pdk.Logger.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Msgs = append(l.Msgs, fmt.Sprintf(format, v...))
}

// Debugf implements pdk.Logger.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.Printf(format, v...)
}

// Contains reports whether any logged message contains s.
func (l *Logger) Contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Msgs {
		if strings.Contains(m, s) {
			return true
		}
	}
	return false
}
