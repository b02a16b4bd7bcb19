package datarecording

import (
	"github.com/sarchlab/conveyor/factory"
	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/pipe"
)

const (
	linkTableName    = "link_samples"
	factoryTableName = "factory_samples"
)

// LinkSample is the state of one link at the end of a tick.
type LinkSample struct {
	Tick           uint32
	Link           string
	Kind           string
	InFlight       int
	Accepted       uint64
	Delivered      uint64
	ConflictStalls uint64
	FullStalls     uint64
}

// FactorySample summarizes a factory at the end of a tick.
type FactorySample struct {
	Tick     uint32
	Links    int
	InFlight int
	Accepted uint64
	Removed  uint64
}

// A ThroughputRecorder samples the links of a factory every few ticks. It
// hooks to the end of factory ticks.
type ThroughputRecorder struct {
	recorder DataRecorder
	interval uint32
	samples  uint64
}

// NewThroughputRecorder creates the sample tables in recorder. An interval of
// 0 samples every tick.
func NewThroughputRecorder(
	recorder DataRecorder,
	interval uint32,
) *ThroughputRecorder {
	if interval == 0 {
		interval = 1
	}

	recorder.CreateTable(linkTableName, LinkSample{})
	recorder.CreateTable(factoryTableName, FactorySample{})

	return &ThroughputRecorder{
		recorder: recorder,
		interval: interval,
	}
}

// Samples returns how many ticks have been sampled.
func (r *ThroughputRecorder) Samples() uint64 {
	return r.samples
}

// Func records a sample when the tick is a multiple of the interval.
func (r *ThroughputRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != factory.HookPosAfterTick {
		return
	}

	f, ok := ctx.Item.(*factory.Factory)
	if !ok {
		return
	}

	now := uint32(ctx.Now)
	if now%r.interval != 0 {
		return
	}

	total := FactorySample{
		Tick:    now,
		Removed: f.Stats().Removed,
	}

	for _, l := range f.Network().Links() {
		stats := l.Stats()
		p := l.Pipe()

		r.recorder.InsertData(linkTableName, LinkSample{
			Tick:           now,
			Link:           l.Name(),
			Kind:           kindName(p),
			InFlight:       p.Len(),
			Accepted:       stats.Accepted,
			Delivered:      stats.Delivered,
			ConflictStalls: stats.ConflictStalls,
			FullStalls:     stats.FullStalls,
		})

		total.Links++
		total.InFlight += p.Len()
		total.Accepted += stats.Accepted
	}

	r.recorder.InsertData(factoryTableName, total)
	r.samples++
}

// MapTables registers the sample tables with a reader.
func MapTables(reader DataReader) {
	reader.MapTable(linkTableName, LinkSample{})
	reader.MapTable(factoryTableName, FactorySample{})
	reader.MapTable(execTableName, ExecInfo{})
}

func kindName(p pipe.Pipe) string {
	kind, ok := pipe.KindOf(p)
	if !ok {
		return "custom"
	}

	return kind.String()
}
