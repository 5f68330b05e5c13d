package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cpusched/idgen"
	"github.com/sarchlab/cpusched/sched"
)

func newTestSimulator(opts Options) *Simulator {
	opts.Logger = slog.New(slog.NewTextHandler(GinkgoWriter, nil))
	if opts.IDs == nil {
		opts.IDs = idgen.NewSequential("p")
	}

	s, err := New(opts)
	Expect(err).NotTo(HaveOccurred())

	return s
}

func mustAdd(s *Simulator, name string, arrival, burst, priority int) string {
	id, err := s.AddProcess(sched.ProcessSpec{
		Name:        name,
		ArrivalTime: arrival,
		BurstTime:   burst,
		Priority:    priority,
	})
	Expect(err).NotTo(HaveOccurred())

	return id
}

var _ = Describe("Simulator", func() {
	var (
		mockCtrl *gomock.Controller
		sim      *Simulator
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sim = newTestSimulator(Options{})
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("creation", func() {
		It("should use the defaults", func() {
			st := sim.Snapshot()

			Expect(st.Algorithm).To(Equal(sched.FCFS))
			Expect(st.Quantum).To(Equal(2))
			Expect(st.UnitCount).To(Equal(1))
			Expect(sim.MaxUnits()).To(Equal(DefaultMaxUnits))
			Expect(sim.Interval()).To(Equal(DefaultInterval))
		})

		It("should reject invalid options", func() {
			_, err := New(Options{Units: 9})
			Expect(err).To(MatchError(ErrInvalidUnitCount))

			_, err = New(Options{Algorithm: "lottery"})
			Expect(err).To(MatchError(sched.ErrUnknownAlgorithm))

			_, err = New(Options{Quantum: -1})
			Expect(err).To(MatchError(ErrInvalidQuantum))
		})
	})

	Context("boundary validation", func() {
		It("should assign sequential identifiers", func() {
			Expect(mustAdd(sim, "A", 0, 3, 1)).To(Equal("p000001"))
			Expect(mustAdd(sim, "B", 0, 3, 1)).To(Equal("p000002"))
		})

		DescribeTable("rejecting invalid definitions",
			func(spec sched.ProcessSpec, want error) {
				_, err := sim.AddProcess(spec)

				Expect(err).To(MatchError(want))
				Expect(sim.Snapshot().Processes).To(BeEmpty())
			},
			Entry("empty name", sched.ProcessSpec{Name: "  ", BurstTime: 1}, sched.ErrEmptyName),
			Entry("zero burst", sched.ProcessSpec{Name: "A"}, sched.ErrInvalidBurst),
			Entry("negative arrival", sched.ProcessSpec{Name: "A", ArrivalTime: -1, BurstTime: 1}, sched.ErrNegativeArrival),
		)

		It("should report unknown identifiers", func() {
			err := sim.RemoveProcess("nope")
			Expect(err).To(MatchError(ErrUnknownProcess))

			err = sim.EditProcess("nope", sched.ProcessSpec{Name: "A", BurstTime: 1})
			Expect(err).To(MatchError(ErrUnknownProcess))
		})

		It("should validate edits before looking the process up", func() {
			id := mustAdd(sim, "A", 0, 3, 1)

			err := sim.EditProcess(id, sched.ProcessSpec{Name: "A"})

			Expect(err).To(MatchError(sched.ErrInvalidBurst))
			p, _ := sim.Snapshot().FindProcess(id)
			Expect(p.BurstTime).To(Equal(3))
		})

		It("should validate settings", func() {
			Expect(sim.SetQuantum(0)).To(MatchError(ErrInvalidQuantum))
			Expect(sim.SetUnitCount(0)).To(MatchError(ErrInvalidUnitCount))
			Expect(sim.SetUnitCount(9)).To(MatchError(ErrInvalidUnitCount))
			Expect(sim.SetAlgorithm("lottery")).To(MatchError(sched.ErrUnknownAlgorithm))

			Expect(sim.SetQuantum(4)).To(Succeed())
			Expect(sim.SetUnitCount(8)).To(Succeed())
			Expect(sim.SetAlgorithm("rr")).To(Succeed())

			st := sim.Snapshot()
			Expect(st.Quantum).To(Equal(4))
			Expect(st.UnitCount).To(Equal(8))
			Expect(st.Algorithm).To(Equal(sched.RoundRobin))
		})

		It("should toggle SRTF eviction", func() {
			sim.SetEviction(false)
			Expect(sim.Snapshot().DispatchOnlySRTF).To(BeTrue())

			sim.SetEviction(true)
			Expect(sim.Snapshot().DispatchOnlySRTF).To(BeFalse())
		})
	})

	Context("ticking", func() {
		It("should refuse to tick without processes", func() {
			_, err := sim.Step()
			Expect(err).To(MatchError(ErrNoProcesses))

			Expect(sim.Start()).To(MatchError(ErrNoProcesses))
			Expect(sim.IsRunning()).To(BeFalse())
			Expect(sim.Now()).To(Equal(0))
		})

		It("should pause on a single step", func() {
			mustAdd(sim, "A", 0, 3, 1)
			Expect(sim.Start()).To(Succeed())

			r, err := sim.Step()

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Time).To(Equal(1))
			Expect(sim.IsRunning()).To(BeFalse())
		})

		It("should run the FCFS example to completion", func() {
			a := mustAdd(sim, "A", 0, 3, 1)
			b := mustAdd(sim, "B", 1, 2, 1)

			ticks, err := sim.RunToCompletion(100)

			Expect(err).NotTo(HaveOccurred())
			Expect(ticks).To(Equal(5))
			Expect(sim.Now()).To(Equal(5))

			st := sim.Snapshot()
			pa, _ := st.Current(a)
			pb, _ := st.Current(b)
			Expect(pa.FinishTime).To(Equal(3))
			Expect(pb.FinishTime).To(Equal(5))
			Expect(pb.WaitingTime).To(Equal(2))

			Expect(sim.Metrics().Throughput).To(BeNumerically("~", 0.4, 1e-9))

			var executed []string
			for _, r := range sim.Timeline() {
				executed = append(executed, r.Executed[0])
			}
			Expect(executed).To(Equal([]string{a, a, a, b, b}))
		})

		It("should pause automatically when every process completed", func() {
			mustAdd(sim, "A", 0, 1, 1)
			Expect(sim.Start()).To(Succeed())

			_, err := sim.RunToCompletion(0)

			Expect(err).NotTo(HaveOccurred())
			Expect(sim.IsRunning()).To(BeFalse())

			_, err = sim.Step()
			Expect(err).To(MatchError(ErrCompleted))
			Expect(sim.Start()).To(MatchError(ErrCompleted))
		})

		It("should stop at the tick limit", func() {
			mustAdd(sim, "A", 0, 10, 1)

			ticks, err := sim.RunToCompletion(4)

			Expect(err).To(MatchError(ErrTickLimit))
			Expect(ticks).To(Equal(4))
			Expect(sim.Now()).To(Equal(4))
		})

		It("should clear the timeline on reset", func() {
			mustAdd(sim, "A", 0, 2, 1)
			_, err := sim.RunToCompletion(0)
			Expect(err).NotTo(HaveOccurred())

			sim.Reset()

			Expect(sim.Timeline()).To(BeEmpty())
			Expect(sim.Now()).To(Equal(0))
			Expect(sim.Snapshot().Completed).To(BeEmpty())

			_, err = sim.Step()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should serialize concurrent callers", func() {
			Expect(sim.SetUnitCount(2)).To(Succeed())
			for i := 0; i < 6; i++ {
				mustAdd(sim, "P", i, 3, 1)
			}

			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()

					for j := 0; j < 5; j++ {
						_, _ = sim.Step()
						_ = sim.Snapshot()
						_ = sim.Metrics()
					}
				}()
			}
			wg.Wait()

			Expect(sim.Now()).To(Equal(len(sim.Timeline())))
		})
	})

	Context("continuous run", func() {
		BeforeEach(func() {
			sim = newTestSimulator(Options{Interval: time.Millisecond})
		})

		It("should advance while running and stop when done", func() {
			mustAdd(sim, "A", 0, 3, 1)
			mustAdd(sim, "B", 1, 2, 1)

			ctx, cancel := context.WithCancel(context.Background())
			errs := make(chan error, 1)
			go func() {
				errs <- sim.Run(ctx)
			}()

			Expect(sim.Start()).To(Succeed())

			Eventually(func() bool {
				return sim.Snapshot().Done()
			}, "2s").Should(BeTrue())
			Expect(sim.IsRunning()).To(BeFalse())
			Expect(sim.Now()).To(Equal(5))

			cancel()
			Eventually(errs).Should(Receive(MatchError(context.Canceled)))
		})

		It("should not tick while paused", func() {
			mustAdd(sim, "A", 0, 3, 1)

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			err := sim.Run(ctx)

			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(sim.Now()).To(Equal(0))
		})
	})

	Context("hooks", func() {
		var (
			hook      *MockHook
			positions []string
		)

		BeforeEach(func() {
			positions = nil
			hook = NewMockHook(mockCtrl)
			hook.EXPECT().
				Func(gomock.Any()).
				Do(func(ctx sched.HookCtx) {
					Expect(ctx.Domain).To(BeIdenticalTo(sim))
					positions = append(positions, ctx.Pos.Name)
				}).
				AnyTimes()
		})

		It("should report ticks and completions in order", func() {
			mustAdd(sim, "A", 0, 3, 1)
			mustAdd(sim, "B", 1, 2, 1)
			sim.AcceptHook(hook)

			_, err := sim.RunToCompletion(0)
			Expect(err).NotTo(HaveOccurred())

			Expect(positions).To(Equal([]string{
				"AfterTick",
				"AfterTick",
				"ProcessDone",
				"AfterTick",
				"AfterTick",
				"ProcessDone",
				"AfterTick",
				"SimulationDone",
			}))
		})

		It("should report commands and resets", func() {
			sim.AcceptHook(hook)

			mustAdd(sim, "A", 0, 3, 1)
			Expect(sim.SetQuantum(3)).To(Succeed())
			sim.Reset()

			Expect(positions).To(Equal([]string{"Command", "Command", "Reset"}))
		})

		It("should not invoke hooks for rejected commands", func() {
			sim.AcceptHook(hook)

			Expect(sim.RemoveProcess("nope")).NotTo(Succeed())
			_, err := sim.Step()
			Expect(err).To(HaveOccurred())

			Expect(positions).To(BeEmpty())
		})

		It("should pass the completed process", func() {
			completed := NewMockHook(mockCtrl)
			completed.EXPECT().
				Func(gomock.Any()).
				Do(func(ctx sched.HookCtx) {
					if ctx.Pos != sched.HookPosProcessDone {
						return
					}

					p := ctx.Item.(sched.Process)
					Expect(p.Name).To(Equal("A"))
					Expect(p.FinishTime).To(Equal(2))
				}).
				MinTimes(1)

			mustAdd(sim, "A", 0, 2, 1)
			sim.AcceptHook(completed)

			_, err := sim.RunToCompletion(0)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
