// Package monitoring turns a running factory into a web server that can be
// inspected and paused from a browser.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/conveyor/factory"
	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/monitoring/web"
	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	factory    *factory.Factory
	portNumber int
	server     *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterFactory registers the factory that is being simulated.
func (m *Monitor) RegisterFactory(f *factory.Factory) {
	m.factory = f
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// TrackTicks creates a progress bar that advances at the end of every tick
// of the registered factory.
func (m *Monitor) TrackTicks(name string, total uint64) *ProgressBar {
	bar := m.CreateProgressBar(name, total)

	m.factory.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
		if ctx.Pos == factory.HookPosAfterTick {
			bar.IncrementFinished(1)
		}
	}))

	return bar
}

// Router returns the handler that serves the monitoring API and pages.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseFactory)
	r.HandleFunc("/api/continue", m.continueFactory)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/pipes", m.listPipes)
	r.HandleFunc("/api/pipe/{name}", m.pipeSlots)
	r.HandleFunc("/api/ports", m.listPorts)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its address.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != http.ErrServerClosed {
			dieOnErr(err)
		}
	}()

	return url
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// OpenInBrowser opens the monitoring page in the default browser.
func OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

func (m *Monitor) pauseFactory(w http.ResponseWriter, _ *http.Request) {
	m.factory.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueFactory(w http.ResponseWriter, _ *http.Request) {
	m.factory.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type nowRsp struct {
	Now     uint32 `json:"now"`
	Ticks   uint64 `json:"ticks"`
	Removed uint64 `json:"removed"`
	Paused  bool   `json:"paused"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	stats := m.factory.Stats()

	writeJSON(w, nowRsp{
		Now:     uint32(m.factory.Now()),
		Ticks:   stats.Ticks,
		Removed: stats.Removed,
		Paused:  m.factory.IsPaused(),
	})
}

type pipeRsp struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Len            int    `json:"len"`
	Capacity       int    `json:"capacity"`
	Source         string `json:"source,omitempty"`
	Destination    string `json:"destination,omitempty"`
	EntryInterval  uint32 `json:"entry_interval,omitempty"`
	Accepted       uint64 `json:"accepted"`
	Delivered      uint64 `json:"delivered"`
	ConflictStalls uint64 `json:"conflict_stalls"`
	FullStalls     uint64 `json:"full_stalls"`
}

func describePipe(info factory.PipeInfo) pipeRsp {
	rsp := pipeRsp{
		Name:     info.Name,
		Kind:     info.Kind.String(),
		Len:      info.Pipe.Len(),
		Capacity: info.Pipe.Capacity(),
	}

	if info.Link == nil {
		return rsp
	}

	if src := info.Link.Source(); src != nil {
		rsp.Source = src.Name()
	}

	if dst := info.Link.Destination(); dst != nil {
		rsp.Destination = dst.Name()
	}

	stats := info.Link.Stats()
	rsp.EntryInterval = info.Link.EntryInterval()
	rsp.Accepted = stats.Accepted
	rsp.Delivered = stats.Delivered
	rsp.ConflictStalls = stats.ConflictStalls
	rsp.FullStalls = stats.FullStalls

	return rsp
}

func (m *Monitor) listPipes(w http.ResponseWriter, _ *http.Request) {
	rsp := []pipeRsp{}

	m.factory.View(func() {
		for _, h := range m.factory.Pipes() {
			info, err := m.factory.Describe(h)
			dieOnErr(err)

			rsp = append(rsp, describePipe(info))
		}
	})

	writeJSON(w, rsp)
}

type slotsRsp struct {
	pipeRsp
	Now   uint32   `json:"now"`
	Slots []string `json:"slots"`
}

func (m *Monitor) pipeSlots(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var (
		rsp   slotsRsp
		found bool
	)

	m.factory.View(func() {
		for _, h := range m.factory.Pipes() {
			info, err := m.factory.Describe(h)
			dieOnErr(err)

			if info.Name != name {
				continue
			}

			found = true
			now := m.factory.Now()
			rsp = slotsRsp{
				pipeRsp: describePipe(info),
				Now:     uint32(now),
				Slots:   slotNames(info.Pipe, now),
			}
		}
	})

	if !found {
		notFound(w, "Pipe not found")
		return
	}

	writeJSON(w, rsp)
}

func slotNames(p pipe.Pipe, now timing.Tick) []string {
	slots := p.Resolve(now)
	names := make([]string, len(slots))

	for i, id := range slots {
		if id != resource.None {
			names[i] = id.String()
		}
	}

	return names
}

type portRsp struct {
	Name     string `json:"name"`
	Resource string `json:"resource,omitempty"`
	Count    uint32 `json:"count"`
	Capacity uint32 `json:"capacity"`
}

func (m *Monitor) listPorts(w http.ResponseWriter, _ *http.Request) {
	rsp := []portRsp{}

	m.factory.View(func() {
		for _, p := range m.factory.Ports() {
			store := p.Snapshot()

			entry := portRsp{
				Name:     p.Name(),
				Count:    store.Stored(),
				Capacity: p.Capacity(),
			}

			if id, _, ok := store.Get(); ok {
				entry.Resource = id.String()
			}

			rsp = append(rsp, entry)
		}
	})

	writeJSON(w, rsp)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := []string{}

	m.factory.View(func() {
		for _, c := range m.factory.Machines() {
			names = append(names, c.Name())
		}

		for _, l := range m.factory.Network().Links() {
			names = append(names, l.Name())
		}
	})

	writeJSON(w, names)
}

func (m *Monitor) findComponent(name string) any {
	for _, c := range m.factory.Machines() {
		if c.Name() == name {
			return c
		}
	}

	for _, l := range m.factory.Network().Links() {
		if l.Name() == name {
			return l
		}
	}

	return nil
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m.serializeComponent(w, name, nil)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.serializeComponent(w, req.CompName, strings.Split(req.FieldName, "."))
}

func (m *Monitor) serializeComponent(
	w http.ResponseWriter,
	name string,
	fields []string,
) {
	buf := bytes.NewBuffer(nil)
	found := false

	m.factory.View(func() {
		component := m.findComponent(name)
		if component == nil {
			return
		}

		found = true

		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)

		if fields != nil {
			dieOnErr(serializer.SetEntryPoint(fields))
		}

		dieOnErr(serializer.Serialize(buf))
	})

	if !found {
		notFound(w, "Component not found")
		return
	}

	_, err := w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func notFound(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte(msg))
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
