// Package monitoring serves a running simulation over HTTP, so that it can be
// watched and controlled from a browser or a script.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"

	"github.com/sarchlab/cpusched/engine"
	"github.com/sarchlab/cpusched/idgen"
	"github.com/sarchlab/cpusched/monitoring/web"
	"github.com/sarchlab/cpusched/sched"
)

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	sim    *engine.Simulator
	addr   string
	logger *slog.Logger
	ids    idgen.Generator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	simProgress      *ProgressBar

	server *http.Server
}

// NewMonitor creates a Monitor for the simulator. The monitor registers itself
// as a hook of the simulator to keep its progress bar current.
func NewMonitor(sim *engine.Simulator) *Monitor {
	m := &Monitor{
		sim:    sim,
		addr:   "localhost:0",
		logger: slog.Default(),
		ids:    idgen.NewSequential("bar"),
	}

	st := sim.Snapshot()
	m.simProgress = m.CreateProgressBar("Simulation", uint64(len(st.Processes)))
	m.updateProgress(st)

	sim.AcceptHook(m)

	return m
}

// WithAddr sets the address the server listens on. Port 0 picks a free port.
func (m *Monitor) WithAddr(addr string) *Monitor {
	m.addr = addr
	return m
}

// WithLogger sets the logger of the monitor.
func (m *Monitor) WithLogger(logger *slog.Logger) *Monitor {
	m.logger = logger.With("component", "monitor")
	return m
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.ids.Generate(),
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

// Func keeps the simulation progress bar in sync with the simulator.
func (m *Monitor) Func(ctx sched.HookCtx) {
	switch ctx.Pos {
	case sched.HookPosAfterTick, sched.HookPosCommand:
		if st, ok := ctx.Detail.(sched.State); ok {
			m.updateProgress(st)
		}
	case sched.HookPosReset:
		if st, ok := ctx.Item.(sched.State); ok {
			m.simProgress.Restart(uint64(len(st.Processes)))
			m.updateProgress(st)
		}
	}
}

func (m *Monitor) updateProgress(st sched.State) {
	m.simProgress.Update(
		uint64(len(st.Processes)),
		uint64(len(st.Completed)),
		uint64(st.BusyUnits()),
	)
}

// Handler returns the HTTP handler that serves the API and the dashboard.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/now", m.now).Methods(http.MethodGet)
	api.HandleFunc("/state", m.state).Methods(http.MethodGet)
	api.HandleFunc("/metrics", m.metrics).Methods(http.MethodGet)
	api.HandleFunc("/timeline", m.timeline).Methods(http.MethodGet)
	api.HandleFunc("/field/{json}", m.listFieldValue).Methods(http.MethodGet)
	api.HandleFunc("/progress", m.listProgressBars).Methods(http.MethodGet)
	api.HandleFunc("/resource", m.listResources).Methods(http.MethodGet)
	api.HandleFunc("/profile", m.collectProfile).Methods(http.MethodGet)

	api.HandleFunc("/start", m.start).Methods(http.MethodPost)
	api.HandleFunc("/continue", m.start).Methods(http.MethodPost)
	api.HandleFunc("/pause", m.pause).Methods(http.MethodPost)
	api.HandleFunc("/step", m.step).Methods(http.MethodPost)
	api.HandleFunc("/reset", m.reset).Methods(http.MethodPost)

	api.HandleFunc("/processes", m.listProcesses).Methods(http.MethodGet)
	api.HandleFunc("/processes", m.addProcess).Methods(http.MethodPost)
	api.HandleFunc("/processes/{id}", m.getProcess).Methods(http.MethodGet)
	api.HandleFunc("/processes/{id}", m.editProcess).Methods(http.MethodPut)
	api.HandleFunc("/processes/{id}", m.removeProcess).Methods(http.MethodDelete)

	api.HandleFunc("/algorithm/{name}", m.setAlgorithm).Methods(http.MethodPost)
	api.HandleFunc("/quantum/{n}", m.setQuantum).Methods(http.MethodPost)
	api.HandleFunc("/units/{n}", m.setUnits).Methods(http.MethodPost)
	api.HandleFunc("/eviction/{mode}", m.setEviction).Methods(http.MethodPost)

	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// dashboard.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", m.addr)
	if err != nil {
		return "", fmt.Errorf("monitor listen on %s: %w", m.addr, err)
	}

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitor server stopped", "error", err)
		}
	}()

	return url, nil
}

// Shutdown stops the server started by StartServer.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// OpenBrowser opens the dashboard in the default browser.
func (m *Monitor) OpenBrowser(url string) error {
	return browser.OpenURL(url)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
