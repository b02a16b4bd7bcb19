package analysis

import (
	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/timing"
)

// PortAnalyzer is a hook for the number of units that pass through a Port.
type PortAnalyzer struct {
	PerfLogger
	TimeTeller

	period uint32
	port   *port.Port

	started  bool
	start    timing.Tick
	lastTime timing.Tick
	in       uint64
	out      uint64
}

// Func counts the units of a transaction.
func (h *PortAnalyzer) Func(ctx hooking.HookCtx) {
	tx, ok := ctx.Item.(port.Transaction)
	if !ok {
		return
	}

	now := h.Now()

	if h.started && h.period > 0 && h.windowStart(now) != h.start {
		h.summarize()
	}

	if !h.started {
		h.started = true
		h.start = h.windowStart(now)
	}

	switch ctx.Pos {
	case port.HookPosPortSend:
		h.in += uint64(tx.Count)
	case port.HookPosPortWithdraw:
		h.out += uint64(tx.Count)
	}

	h.lastTime = now
}

func (h *PortAnalyzer) windowStart(t timing.Tick) timing.Tick {
	if h.period == 0 {
		return 0
	}

	return t - t%timing.Tick(h.period)
}

func (h *PortAnalyzer) summarize() {
	if !h.started {
		return
	}

	end := h.lastTime + 1
	if h.period > 0 {
		end = h.start + timing.Tick(h.period)
	}

	entry := PerfAnalyzerEntry{
		Start:     h.start,
		End:       end,
		Where:     h.port.Name(),
		EntryType: "Traffic",
		Unit:      "Unit",
	}

	if h.in != 0 {
		entry.What = "Incoming"
		entry.Value = float64(h.in)
		h.PerfLogger.AddDataEntry(entry)
	}

	if h.out != 0 {
		entry.What = "Outgoing"
		entry.Value = float64(h.out)
		h.PerfLogger.AddDataEntry(entry)
	}

	h.started = false
	h.in = 0
	h.out = 0
}

// PortAnalyzerBuilder can build a PortAnalyzer.
type PortAnalyzerBuilder struct {
	perfLogger PerfLogger
	timeTeller TimeTeller
	period     uint32
	port       *port.Port
}

// MakePortAnalyzerBuilder creates a PortAnalyzerBuilder.
func MakePortAnalyzerBuilder() PortAnalyzerBuilder {
	return PortAnalyzerBuilder{}
}

// WithPerfLogger sets the logger to be used by the PortAnalyzer.
func (b PortAnalyzerBuilder) WithPerfLogger(l PerfLogger) PortAnalyzerBuilder {
	b.perfLogger = l
	return b
}

// WithTimeTeller sets the TimeTeller to be used by the PortAnalyzer.
func (b PortAnalyzerBuilder) WithTimeTeller(t TimeTeller) PortAnalyzerBuilder {
	b.timeTeller = t
	return b
}

// WithPeriod sets the number of ticks in each window.
func (b PortAnalyzerBuilder) WithPeriod(p uint32) PortAnalyzerBuilder {
	b.period = p
	return b
}

// WithPort sets the port to be used by the PortAnalyzer.
func (b PortAnalyzerBuilder) WithPort(p *port.Port) PortAnalyzerBuilder {
	b.port = p
	return b
}

// Build creates a PortAnalyzer.
func (b PortAnalyzerBuilder) Build() *PortAnalyzer {
	if b.perfLogger == nil {
		panic("PortAnalyzer requires a PerfLogger")
	}

	if b.timeTeller == nil {
		panic("PortAnalyzer requires a TimeTeller")
	}

	if b.port == nil {
		panic("PortAnalyzer requires a Port")
	}

	return &PortAnalyzer{
		PerfLogger: b.perfLogger,
		TimeTeller: b.timeTeller,
		period:     b.period,
		port:       b.port,
	}
}
