// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package termstat provides a stats implementation which periodically logs the
// statistics to the given writer. It shows fetch and ingest progress at the
// terminal in lieu of an actual collector writing to an external tool like
// graphite or datadog.
package termstat

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// DefaultInterval is how often a Collector writes its stats.
const DefaultInterval = 2 * time.Second

// Collector collects stats and prints them to the terminal. Counts are
// summed, gauges and timings keep their latest value.
type Collector struct {
	lock    sync.Mutex
	indexes map[string]int
	names   []string
	stats   []string
	counts  []int64
	changed bool
	out     io.Writer

	ticker *time.Ticker
	done   chan struct{}
	closed sync.Once
}

// NewCollector initializes a Collector which writes to out every interval
// until it is closed.
func NewCollector(out io.Writer, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ts := &Collector{
		indexes: make(map[string]int),
		out:     out,
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-ts.ticker.C:
				ts.write()
			case <-ts.done:
				return
			}
		}
	}()
	return ts
}

// index must be called with the lock held.
func (t *Collector) index(name string) int {
	idx, ok := t.indexes[name]
	if !ok {
		idx = len(t.stats)
		t.stats = append(t.stats, "")
		t.counts = append(t.counts, 0)
		t.names = append(t.names, name)
		t.indexes[name] = idx
	}
	return idx
}

// Count adds value to the named stat at the specified rate.
func (t *Collector) Count(name string, value int64, rate float64, tags ...string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.changed = true

	idx := t.index(name)
	if rate < 1 {
		if rand.Float64() > rate {
			return
		}
	}
	t.counts[idx] += value
	t.stats[idx] = fmt.Sprintf("%d", t.counts[idx])
}

// Gauge sets the named stat to value.
func (t *Collector) Gauge(name string, value float64, rate float64, tags ...string) {
	t.set(name, fmt.Sprintf("%g", value))
}

// Histogram does nothing.
func (t *Collector) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set sets the named stat to value.
func (t *Collector) Set(name string, value string, rate float64, tags ...string) {
	t.set(name, value)
}

// Timing sets the named stat to value.
func (t *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {
	t.set(name, value.Round(time.Millisecond).String())
}

func (t *Collector) set(name, value string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.changed = true
	t.stats[t.index(name)] = value
}

// String returns the current stats on one line.
func (t *Collector) String() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.line()
}

func (t *Collector) line() string {
	sb := strings.Builder{}
	for i := 0; i < len(t.stats); i++ {
		if t.stats[i] == "" {
			continue
		}
		_, _ = sb.WriteString(fmt.Sprintf("%s: %s ", t.names[i], t.stats[i]))
	}
	return sb.String()
}

func (t *Collector) write() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.changed {
		return
	}
	t.changed = false
	fmt.Fprint(t.out, "\r"+t.line())
}

// Close stops the periodic writes and writes the final stats followed by a
// newline.
func (t *Collector) Close() error {
	t.closed.Do(func() {
		t.ticker.Stop()
		close(t.done)
		t.write()
		t.lock.Lock()
		fmt.Fprintln(t.out)
		t.lock.Unlock()
	})
	return nil
}
