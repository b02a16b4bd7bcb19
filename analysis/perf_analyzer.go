// Package analysis summarizes the traffic through ports over windows of
// ticks.
package analysis

import (
	"sync"

	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/timing"
)

// PerfAnalyzerEntry is a single entry in the performance database.
type PerfAnalyzerEntry struct {
	Start     timing.Tick
	End       timing.Tick
	Where     string
	What      string
	EntryType string
	Value     float64
	Unit      string
}

// PerfLogger is the interface that provide the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfAnalyzerEntry)
}

// PerfAnalyzerBackend is the interface that provides the service that can
// record performance data entries.
type PerfAnalyzerBackend interface {
	PerfLogger
	Flush()
}

// TimeTeller tells the current tick.
type TimeTeller interface {
	Now() timing.Tick
}

// PerfAnalyzer attaches port analyzers and forwards their entries to a
// backend.
type PerfAnalyzer struct {
	period     uint32
	timeTeller TimeTeller
	backend    PerfAnalyzerBackend

	lock      sync.Mutex
	analyzers []*PortAnalyzer
}

// RegisterPort starts analyzing the traffic through a port.
func (p *PerfAnalyzer) RegisterPort(pt *port.Port) {
	a := MakePortAnalyzerBuilder().
		WithPerfLogger(p).
		WithTimeTeller(p.timeTeller).
		WithPeriod(p.period).
		WithPort(pt).
		Build()

	pt.AcceptHook(a)
	p.analyzers = append(p.analyzers, a)
}

// AddDataEntry adds an entry to the backend. It is safe to call from the
// hooks of ports that are used in parallel.
func (p *PerfAnalyzer) AddDataEntry(entry PerfAnalyzerEntry) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.backend.AddDataEntry(entry)
}

// Flush reports the traffic of the windows that are still open and flushes
// the backend.
func (p *PerfAnalyzer) Flush() {
	for _, a := range p.analyzers {
		a.summarize()
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	p.backend.Flush()
}

// PerfAnalyzerBuilder is a builder that can build a PerfAnalyzer.
type PerfAnalyzerBuilder struct {
	period     uint32
	timeTeller TimeTeller
	backend    PerfAnalyzerBackend
}

// MakePerfAnalyzerBuilder creates a PerfAnalyzerBuilder.
func MakePerfAnalyzerBuilder() PerfAnalyzerBuilder {
	return PerfAnalyzerBuilder{}
}

// WithPeriod sets the number of ticks in each window. Zero reports a single
// window when the analyzer is flushed.
func (b PerfAnalyzerBuilder) WithPeriod(period uint32) PerfAnalyzerBuilder {
	b.period = period
	return b
}

// WithTimeTeller sets the source of the current tick.
func (b PerfAnalyzerBuilder) WithTimeTeller(t TimeTeller) PerfAnalyzerBuilder {
	b.timeTeller = t
	return b
}

// WithBackend sets where the entries go.
func (b PerfAnalyzerBuilder) WithBackend(
	backend PerfAnalyzerBackend,
) PerfAnalyzerBuilder {
	b.backend = backend
	return b
}

// Build creates a PerfAnalyzer.
func (b PerfAnalyzerBuilder) Build() *PerfAnalyzer {
	if b.backend == nil {
		panic("PerfAnalyzer requires a backend")
	}

	if b.timeTeller == nil {
		panic("PerfAnalyzer requires a TimeTeller")
	}

	return &PerfAnalyzer{
		period:     b.period,
		timeTeller: b.timeTeller,
		backend:    b.backend,
	}
}
