package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyor/factory"
	"github.com/sarchlab/conveyor/machine"
	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/resource"
)

var _ = Describe("Monitor", func() {
	var (
		ore resource.ID
		f   *factory.Factory
		m   *Monitor
	)

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		m.Router().ServeHTTP(rec, req)

		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	BeforeEach(func() {
		ore = resource.NewTypeIn(resource.NewRegistry(), "Ore").ID()

		f = factory.MakeBuilder().Build("Plant")
		_, err := factory.BuildChains(f, factory.ChainSpec{
			Chains:     1,
			PipeLength: 4,
			Kind:       pipe.KindPacket,
			Resource:   ore,
			Machines:   machine.MakeBuilder(),
		})
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor()
		m.RegisterFactory(f)
	})

	It("should report the current tick", func() {
		f.Step()
		f.Step()

		rsp := nowRsp{}
		decode(get("/api/now"), &rsp)

		Expect(rsp.Now).To(Equal(uint32(1)))
		Expect(rsp.Ticks).To(Equal(uint64(2)))
		Expect(rsp.Paused).To(BeFalse())
	})

	It("should pause and continue the factory", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(f.IsPaused()).To(BeTrue())

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(f.IsPaused()).To(BeFalse())
	})

	It("should list pipes", func() {
		f.Step()

		rsp := []pipeRsp{}
		decode(get("/api/pipes"), &rsp)

		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0].Name).To(Equal("Plant.Pipe1"))
		Expect(rsp[0].Kind).To(Equal("packet"))
		Expect(rsp[0].Source).To(Equal("Source0.B"))
		Expect(rsp[0].Destination).To(Equal("Passthrough0.A"))
		Expect(rsp[0].Len).To(Equal(1))
		Expect(rsp[0].Accepted).To(Equal(uint64(1)))
	})

	It("should resolve the slots of a pipe", func() {
		f.Step()
		f.Step()

		rsp := slotsRsp{}
		decode(get("/api/pipe/Plant.Pipe1"), &rsp)

		Expect(rsp.Now).To(Equal(uint32(1)))
		Expect(rsp.Slots).To(Equal([]string{"", "", "resource#1", ""}))
	})

	It("should answer 404 for unknown pipes and components", func() {
		Expect(get("/api/pipe/Nope").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/component/Nope").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should list ports", func() {
		f.Step()

		rsp := []portRsp{}
		decode(get("/api/ports"), &rsp)

		Expect(rsp).To(HaveLen(12))
		Expect(rsp[0].Name).To(Equal("Source0.A"))
		Expect(rsp[1].Count).To(BeZero())
	})

	It("should list components", func() {
		names := []string{}
		decode(get("/api/list_components"), &names)

		Expect(names).To(Equal([]string{
			"Source0", "Passthrough0", "Sink0", "Plant.Pipe1", "Plant.Pipe2",
		}))
	})

	It("should serialize components", func() {
		rec := get("/api/component/Passthrough0")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should track ticks with a progress bar", func() {
		bar := m.TrackTicks("Simulation", 10)

		f.Step()
		f.Step()
		f.Step()

		rsp := []progressSnapshot{}
		decode(get("/api/progress"), &rsp)

		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Name).To(Equal("Simulation"))
		Expect(rsp[0].Finished).To(Equal(uint64(3)))

		m.CompleteProgressBar(bar)
		decode(get("/api/progress"), &rsp)
		Expect(rsp).To(BeEmpty())
	})

	It("should report process resources", func() {
		rsp := resourceRsp{}
		decode(get("/api/resource"), &rsp)

		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the dashboard", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Conveyor Monitor"))
	})

	It("should refuse reserved port numbers", func() {
		Expect(NewMonitor().WithPortNumber(80).portNumber).To(BeZero())
		Expect(NewMonitor().WithPortNumber(8080).portNumber).To(Equal(8080))
	})
})
