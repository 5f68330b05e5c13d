package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cpusched/engine"
	"github.com/sarchlab/cpusched/report"
	"github.com/sarchlab/cpusched/sched"
)

type errorRsp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(data)
	dieOnErr(err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorRsp{Error: err.Error()})
}

// statusOf maps simulator errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownProcess):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNoProcesses),
		errors.Is(err, engine.ErrCompleted):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (m *Monitor) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type nowRsp struct {
	Now       int  `json:"now"`
	IsRunning bool `json:"is_running"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	st := m.sim.Snapshot()
	writeJSON(w, http.StatusOK, nowRsp{Now: st.CurrentTime, IsRunning: st.IsRunning})
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.sim.Snapshot())
}

func (m *Monitor) metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.sim.Metrics())
}

type timelineRsp struct {
	Ticks  []sched.TickReport `json:"ticks"`
	Slices [][]report.Slice   `json:"slices"`
}

func (m *Monitor) timeline(w http.ResponseWriter, _ *http.Request) {
	ticks := m.sim.Timeline()
	writeJSON(w, http.StatusOK, timelineRsp{
		Ticks:  ticks,
		Slices: report.Slices(ticks),
	})
}

type fieldReq struct {
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	st := m.sim.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&st)
	serializer.SetMaxDepth(1)

	if req.FieldName != "" {
		err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	buf := bytes.NewBuffer(nil)

	err = serializer.Serialize(buf)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, http.StatusOK, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
	Memory     string  `json:"memory"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
		Memory:     humanize.IBytes(memoryInfo.RSS),
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

func (m *Monitor) start(w http.ResponseWriter, _ *http.Request) {
	m.respond(w, m.sim.Start())
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.sim.Pause()
	m.respond(w, nil)
}

func (m *Monitor) step(w http.ResponseWriter, _ *http.Request) {
	tick, err := m.sim.Step()
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	writeJSON(w, http.StatusOK, tick)
}

func (m *Monitor) reset(w http.ResponseWriter, _ *http.Request) {
	m.sim.Reset()
	m.respond(w, nil)
}

type processView struct {
	sched.Process
	Location string `json:"location"`
}

func (m *Monitor) listProcesses(w http.ResponseWriter, _ *http.Request) {
	st := m.sim.Snapshot()

	views := make([]processView, 0, len(st.Processes))
	for _, def := range st.Processes {
		p, loc := st.Current(def.ID)
		views = append(views, processView{Process: p, Location: loc.String()})
	}

	writeJSON(w, http.StatusOK, views)
}

func (m *Monitor) getProcess(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, loc := m.sim.Snapshot().Current(id)
	if loc == sched.LocationUnknown {
		writeError(w, http.StatusNotFound,
			fmt.Errorf("%w: %q", engine.ErrUnknownProcess, id))
		return
	}

	writeJSON(w, http.StatusOK, processView{Process: p, Location: loc.String()})
}

func decodeSpec(r *http.Request) (sched.ProcessSpec, error) {
	var spec sched.ProcessSpec

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&spec)
	if err != nil {
		return spec, fmt.Errorf("invalid process definition: %w", err)
	}

	return spec, nil
}

type addProcessRsp struct {
	ID string `json:"id"`
}

func (m *Monitor) addProcess(w http.ResponseWriter, r *http.Request) {
	spec, err := decodeSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := m.sim.AddProcess(spec)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, addProcessRsp{ID: id})
}

func (m *Monitor) editProcess(w http.ResponseWriter, r *http.Request) {
	spec, err := decodeSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m.respond(w, m.sim.EditProcess(mux.Vars(r)["id"], spec))
}

func (m *Monitor) removeProcess(w http.ResponseWriter, r *http.Request) {
	m.respond(w, m.sim.RemoveProcess(mux.Vars(r)["id"]))
}

func (m *Monitor) setAlgorithm(w http.ResponseWriter, r *http.Request) {
	m.respond(w, m.sim.SetAlgorithm(mux.Vars(r)["name"]))
}

func intVar(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}

	return v, nil
}

func (m *Monitor) setQuantum(w http.ResponseWriter, r *http.Request) {
	q, err := intVar(r, "n")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m.respond(w, m.sim.SetQuantum(q))
}

func (m *Monitor) setUnits(w http.ResponseWriter, r *http.Request) {
	n, err := intVar(r, "n")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m.respond(w, m.sim.SetUnitCount(n))
}

func (m *Monitor) setEviction(w http.ResponseWriter, r *http.Request) {
	switch mode := mux.Vars(r)["mode"]; mode {
	case "on":
		m.sim.SetEviction(true)
	case "off":
		m.sim.SetEviction(false)
	default:
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("eviction mode must be on or off, got %q", mode))
		return
	}

	m.respond(w, nil)
}
