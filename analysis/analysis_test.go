package analysis_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyor/analysis"
	"github.com/sarchlab/conveyor/factory"
	"github.com/sarchlab/conveyor/machine"
	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/resource"
)

type memoryBackend struct {
	entries []analysis.PerfAnalyzerEntry
	flushed int
}

func (b *memoryBackend) AddDataEntry(entry analysis.PerfAnalyzerEntry) {
	b.entries = append(b.entries, entry)
}

func (b *memoryBackend) Flush() {
	b.flushed++
}

func (b *memoryBackend) at(where string) []analysis.PerfAnalyzerEntry {
	var entries []analysis.PerfAnalyzerEntry

	for _, e := range b.entries {
		if e.Where == where {
			entries = append(entries, e)
		}
	}

	return entries
}

var _ = Describe("PerfAnalyzer", func() {
	var (
		f       *factory.Factory
		backend *memoryBackend
	)

	BeforeEach(func() {
		f = factory.MakeBuilder().Build("Factory")
		_, err := factory.BuildChains(f, factory.ChainSpec{
			Chains:     1,
			PipeLength: 4,
			Kind:       pipe.KindPacket,
			Resource:   resource.ID(1),
			Machines:   machine.MakeBuilder(),
		})
		Expect(err).NotTo(HaveOccurred())

		backend = &memoryBackend{}
	})

	It("should count units per window", func() {
		a := analysis.MakePerfAnalyzerBuilder().
			WithPeriod(10).
			WithTimeTeller(f).
			WithBackend(backend).
			Build()

		for _, p := range f.Ports() {
			a.RegisterPort(p)
		}

		Expect(f.Run(context.Background(), 20)).To(Succeed())
		a.Flush()

		Expect(backend.flushed).To(Equal(1))
		Expect(backend.at("Source0.B")).To(Equal([]analysis.PerfAnalyzerEntry{
			{
				Start: 0, End: 10, Where: "Source0.B", What: "Outgoing",
				EntryType: "Traffic", Value: 3, Unit: "Unit",
			},
			{
				Start: 10, End: 20, Where: "Source0.B", What: "Outgoing",
				EntryType: "Traffic", Value: 2, Unit: "Unit",
			},
		}))
	})

	It("should report a single window without a period", func() {
		a := analysis.MakePerfAnalyzerBuilder().
			WithTimeTeller(f).
			WithBackend(backend).
			Build()

		for _, p := range f.Ports() {
			a.RegisterPort(p)
		}

		Expect(f.Run(context.Background(), 20)).To(Succeed())
		a.Flush()

		entries := backend.at("Source0.B")
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Value).To(Equal(5.0))
		Expect(entries[0].End).To(BeNumerically("==", 17))
	})

	It("should require a backend", func() {
		Expect(func() {
			analysis.MakePerfAnalyzerBuilder().WithTimeTeller(f).Build()
		}).To(Panic())
	})
})

var _ = Describe("CSVBackend", func() {
	It("should write a header and the entries", func() {
		buf := new(bytes.Buffer)
		b := analysis.NewCSVBackendWithWriter(buf)

		b.AddDataEntry(analysis.PerfAnalyzerEntry{
			Start: 0, End: 10, Where: "Sink0.A", What: "Incoming",
			EntryType: "Traffic", Value: 2, Unit: "Unit",
		})
		Expect(b.Close()).To(Succeed())

		Expect(buf.String()).To(Equal(
			"Start,End,Where,What,EntryType,Value,Unit\n" +
				"0,10,Sink0.A,Incoming,Traffic,2,Unit\n"))
	})
})
