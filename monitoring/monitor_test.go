package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cpusched/engine"
	"github.com/sarchlab/cpusched/sched"
)

var _ = Describe("Monitor", func() {
	var (
		sim     *engine.Simulator
		m       *Monitor
		handler http.Handler
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}

		req := httptest.NewRequest(method, path, reader)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	addProcess := func(body string) string {
		rec := do(http.MethodPost, "/api/processes", body)
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

		rsp := addProcessRsp{}
		decode(rec, &rsp)

		return rsp.ID
	}

	BeforeEach(func() {
		var err error
		sim, err = engine.New(engine.Options{
			Logger: slog.New(slog.NewTextHandler(GinkgoWriter, nil)),
		})
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor(sim).WithLogger(slog.New(slog.NewTextHandler(GinkgoWriter, nil)))
		handler = m.Handler()
	})

	It("should register itself as a hook", func() {
		Expect(sim.NumHooks()).To(Equal(1))
	})

	It("should report the current time", func() {
		rec := do(http.MethodGet, "/api/now", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"now":0,"is_running":false}`))
	})

	Context("process definitions", func() {
		It("should define processes", func() {
			id := addProcess(`{"name":"A","arrival_time":0,"burst_time":3,"priority":2}`)
			Expect(id).To(Equal("p000001"))

			rec := do(http.MethodGet, "/api/processes/"+id, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			view := processView{}
			decode(rec, &view)
			Expect(view.Name).To(Equal("A"))
			Expect(view.Priority).To(Equal(2))
			Expect(view.Location).To(Equal("running"))
		})

		DescribeTable("rejecting invalid definitions",
			func(body string) {
				rec := do(http.MethodPost, "/api/processes", body)

				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(ContainSubstring(`"error"`))
				Expect(sim.Snapshot().Processes).To(BeEmpty())
			},
			Entry("empty name", `{"name":"","burst_time":3}`),
			Entry("zero burst", `{"name":"A","burst_time":0}`),
			Entry("negative arrival", `{"name":"A","arrival_time":-1,"burst_time":1}`),
			Entry("unknown field", `{"name":"A","burst":3}`),
			Entry("malformed body", `{"name":`),
		)

		It("should edit and remove processes", func() {
			id := addProcess(`{"name":"A","burst_time":3}`)

			rec := do(http.MethodPut, "/api/processes/"+id, `{"name":"A2","burst_time":5}`)
			Expect(rec.Code).To(Equal(http.StatusNoContent))

			p, _ := sim.Snapshot().FindProcess(id)
			Expect(p.Name).To(Equal("A2"))
			Expect(p.BurstTime).To(Equal(5))

			rec = do(http.MethodDelete, "/api/processes/"+id, "")
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(sim.Snapshot().Processes).To(BeEmpty())
		})

		It("should answer 404 for unknown processes", func() {
			Expect(do(http.MethodGet, "/api/processes/nope", "").Code).
				To(Equal(http.StatusNotFound))
			Expect(do(http.MethodPut, "/api/processes/nope", `{"name":"A","burst_time":1}`).Code).
				To(Equal(http.StatusNotFound))
			Expect(do(http.MethodDelete, "/api/processes/nope", "").Code).
				To(Equal(http.StatusNotFound))
		})

		It("should list every process with its location", func() {
			addProcess(`{"name":"A","burst_time":3}`)
			addProcess(`{"name":"B","arrival_time":4,"burst_time":3}`)

			rec := do(http.MethodGet, "/api/processes", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var views []processView
			decode(rec, &views)
			Expect(views).To(HaveLen(2))
			Expect(views[0].Location).To(Equal("running"))
			Expect(views[1].Location).To(Equal("pending"))
		})
	})

	Context("settings", func() {
		It("should change the algorithm", func() {
			Expect(do(http.MethodPost, "/api/algorithm/round-robin", "").Code).
				To(Equal(http.StatusNoContent))
			Expect(sim.Snapshot().Algorithm).To(Equal(sched.RoundRobin))

			Expect(do(http.MethodPost, "/api/algorithm/lottery", "").Code).
				To(Equal(http.StatusBadRequest))
		})

		It("should change the quantum", func() {
			Expect(do(http.MethodPost, "/api/quantum/5", "").Code).
				To(Equal(http.StatusNoContent))
			Expect(sim.Snapshot().Quantum).To(Equal(5))

			Expect(do(http.MethodPost, "/api/quantum/0", "").Code).
				To(Equal(http.StatusBadRequest))
			Expect(do(http.MethodPost, "/api/quantum/abc", "").Code).
				To(Equal(http.StatusBadRequest))
		})

		It("should change the unit count", func() {
			Expect(do(http.MethodPost, "/api/units/4", "").Code).
				To(Equal(http.StatusNoContent))
			Expect(sim.Snapshot().UnitCount).To(Equal(4))

			Expect(do(http.MethodPost, "/api/units/9", "").Code).
				To(Equal(http.StatusBadRequest))
		})

		It("should toggle eviction", func() {
			Expect(do(http.MethodPost, "/api/eviction/off", "").Code).
				To(Equal(http.StatusNoContent))
			Expect(sim.Snapshot().DispatchOnlySRTF).To(BeTrue())

			Expect(do(http.MethodPost, "/api/eviction/maybe", "").Code).
				To(Equal(http.StatusBadRequest))
		})
	})

	Context("run control", func() {
		It("should refuse to run without processes", func() {
			Expect(do(http.MethodPost, "/api/step", "").Code).
				To(Equal(http.StatusConflict))
			Expect(do(http.MethodPost, "/api/start", "").Code).
				To(Equal(http.StatusConflict))
		})

		It("should start and pause", func() {
			addProcess(`{"name":"A","burst_time":3}`)

			Expect(do(http.MethodPost, "/api/start", "").Code).
				To(Equal(http.StatusNoContent))
			Expect(sim.IsRunning()).To(BeTrue())

			Expect(do(http.MethodPost, "/api/pause", "").Code).
				To(Equal(http.StatusNoContent))
			Expect(sim.IsRunning()).To(BeFalse())
		})

		It("should step through a simulation", func() {
			addProcess(`{"name":"A","arrival_time":0,"burst_time":3}`)
			addProcess(`{"name":"B","arrival_time":1,"burst_time":2}`)

			for i := 1; i <= 5; i++ {
				rec := do(http.MethodPost, "/api/step", "")
				Expect(rec.Code).To(Equal(http.StatusOK))

				tick := sched.TickReport{}
				decode(rec, &tick)
				Expect(tick.Time).To(Equal(i))
			}

			Expect(do(http.MethodPost, "/api/step", "").Code).
				To(Equal(http.StatusConflict))

			metrics := sched.Metrics{}
			decode(do(http.MethodGet, "/api/metrics", ""), &metrics)
			Expect(metrics.Completed).To(Equal(2))
			Expect(metrics.Throughput).To(BeNumerically("~", 0.4, 1e-9))

			timeline := timelineRsp{}
			decode(do(http.MethodGet, "/api/timeline", ""), &timeline)
			Expect(timeline.Ticks).To(HaveLen(5))
			Expect(timeline.Slices).To(HaveLen(1))
			Expect(timeline.Slices[0]).To(HaveLen(2))

			Expect(do(http.MethodPost, "/api/reset", "").Code).
				To(Equal(http.StatusNoContent))
			Expect(sim.Now()).To(Equal(0))
		})
	})

	Context("progress", func() {
		It("should follow the simulation", func() {
			addProcess(`{"name":"A","burst_time":1}`)
			addProcess(`{"name":"B","burst_time":4}`)
			_, err := sim.Step()
			Expect(err).NotTo(HaveOccurred())

			rec := do(http.MethodGet, "/api/progress", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var bars []progressSnapshot
			decode(rec, &bars)
			Expect(bars).To(HaveLen(1))
			Expect(bars[0].Name).To(Equal("Simulation"))
			Expect(bars[0].Total).To(Equal(uint64(2)))
			Expect(bars[0].Finished).To(Equal(uint64(1)))
			Expect(bars[0].InProgress).To(Equal(uint64(1)))

			sim.Reset()

			decode(do(http.MethodGet, "/api/progress", ""), &bars)
			Expect(bars[0].Finished).To(BeZero())
		})

		It("should hide completed bars", func() {
			bar := m.CreateProgressBar("extra", 3)

			m.CompleteProgressBar(bar)

			var bars []progressSnapshot
			decode(do(http.MethodGet, "/api/progress", ""), &bars)
			Expect(bars).To(HaveLen(1))
		})
	})

	It("should serialize a field of the state", func() {
		addProcess(`{"name":"A","burst_time":3}`)

		rec := do(http.MethodGet,
			"/api/field/"+url.PathEscape(`{"field_name":"Units"}`), "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should reject malformed field requests", func() {
		rec := do(http.MethodGet, "/api/field/"+url.PathEscape(`{bad`), "")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report resource usage", func() {
		rec := do(http.MethodGet, "/api/resource", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rsp := resourceRsp{}
		decode(rec, &rsp)
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
		Expect(rsp.Memory).To(HaveSuffix("iB"))
	})

	It("should serve the dashboard", func() {
		rec := do(http.MethodGet, "/", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should serve over TCP", func() {
		url, err := m.WithAddr("localhost:0").StartServer()
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			Expect(m.Shutdown(context.Background())).To(Succeed())
		}()

		rsp, err := http.Get(url + "/api/now")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})
