package sched

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SelectNext", func() {
	mk := func(id string, arrival, burst, remaining, priority int) Process {
		return Process{
			ID:            id,
			Name:          id,
			ArrivalTime:   arrival,
			BurstTime:     burst,
			RemainingTime: remaining,
			Priority:      priority,
		}
	}

	It("should report an empty queue", func() {
		_, ok := SelectNext(nil, FCFS, 0, 2)
		Expect(ok).To(BeFalse())
	})

	It("should not modify the queue", func() {
		ready := []Process{mk("b", 3, 4, 4, 1), mk("a", 1, 2, 2, 1)}
		before := append([]Process(nil), ready...)

		_, _ = SelectNext(ready, SJF, 0, 2)

		Expect(ready).To(Equal(before))
	})

	DescribeTable("picking the best candidate",
		func(alg Algorithm, ready []Process, want string) {
			p, ok := SelectNext(ready, alg, 10, 2)

			Expect(ok).To(BeTrue())
			Expect(p.ID).To(Equal(want))
		},
		Entry("FCFS by arrival", FCFS,
			[]Process{mk("x", 4, 1, 1, 1), mk("y", 2, 9, 9, 9)}, "y"),
		Entry("FCFS ties by identifier", FCFS,
			[]Process{mk("q", 2, 1, 1, 1), mk("p", 2, 9, 9, 9)}, "p"),
		Entry("SJF by burst", SJF,
			[]Process{mk("x", 0, 5, 1, 1), mk("y", 3, 2, 2, 1)}, "y"),
		Entry("SJF ties by arrival", SJF,
			[]Process{mk("x", 3, 2, 2, 1), mk("y", 1, 2, 2, 1)}, "y"),
		Entry("SJF ties by identifier", SJF,
			[]Process{mk("b", 1, 2, 2, 1), mk("a", 1, 2, 2, 1)}, "a"),
		Entry("SRTF by remaining time", SRTF,
			[]Process{mk("x", 0, 2, 2, 1), mk("y", 0, 9, 1, 1)}, "y"),
		Entry("SRTF ties by arrival", SRTF,
			[]Process{mk("x", 5, 2, 2, 1), mk("y", 4, 3, 2, 1)}, "y"),
		Entry("Priority by lower value", Priority,
			[]Process{mk("x", 0, 1, 1, 3), mk("y", 9, 9, 9, 1)}, "y"),
		Entry("Priority ties by arrival then identifier", Priority,
			[]Process{mk("c", 2, 1, 1, 1), mk("b", 1, 1, 1, 1), mk("a", 1, 1, 1, 1)}, "a"),
		Entry("Round Robin takes the head", RoundRobin,
			[]Process{mk("z", 9, 9, 9, 9), mk("a", 0, 1, 1, 1)}, "z"),
		Entry("unknown algorithms take the head", Algorithm("lottery"),
			[]Process{mk("z", 9, 9, 9, 9), mk("a", 0, 1, 1, 1)}, "z"),
	)
})

var _ = Describe("ParseAlgorithm", func() {
	DescribeTable("aliases",
		func(name string, want Algorithm) {
			alg, err := ParseAlgorithm(name)

			Expect(err).NotTo(HaveOccurred())
			Expect(alg).To(Equal(want))
		},
		Entry(nil, "FCFS", FCFS),
		Entry(nil, "sjf", SJF),
		Entry(nil, " SRTF ", SRTF),
		Entry(nil, "priority", Priority),
		Entry(nil, "RoundRobin", RoundRobin),
		Entry(nil, "round_robin", RoundRobin),
		Entry(nil, "rr", RoundRobin),
	)

	It("should reject unknown names", func() {
		_, err := ParseAlgorithm("lottery")

		Expect(err).To(MatchError(ErrUnknownAlgorithm))
	})

	It("should know which algorithms preempt", func() {
		Expect(RoundRobin.Preemptive()).To(BeTrue())
		Expect(SRTF.Preemptive()).To(BeTrue())
		Expect(FCFS.Preemptive()).To(BeFalse())
		Expect(Algorithm("x").Known()).To(BeFalse())
	})
})
