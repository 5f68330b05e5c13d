package sched

// SelectNext picks the best candidate in the ready queue under the given
// algorithm. The queue is never modified. The second return value is false
// when the queue is empty.
//
// now and quantum are unused by the current policies.
func SelectNext(
	ready []Process,
	alg Algorithm,
	now, quantum int,
) (Process, bool) {
	idx := selectIndex(ready, alg)
	if idx < 0 {
		return Process{}, false
	}

	return ready[idx], true
}

func selectIndex(ready []Process, alg Algorithm) int {
	if len(ready) == 0 {
		return -1
	}

	less := comparator(alg)
	if less == nil {
		return 0
	}

	best := 0
	for i := 1; i < len(ready); i++ {
		if less(ready[i], ready[best]) {
			best = i
		}
	}

	return best
}

// comparator returns the strict ordering of an algorithm, or nil for
// queue-order policies (Round Robin and anything unrecognized).
func comparator(alg Algorithm) func(a, b Process) bool {
	switch alg {
	case FCFS:
		return func(a, b Process) bool {
			if a.ArrivalTime != b.ArrivalTime {
				return a.ArrivalTime < b.ArrivalTime
			}

			return a.ID < b.ID
		}
	case SJF:
		return byKey(func(p Process) int { return p.BurstTime })
	case SRTF:
		return byKey(func(p Process) int { return p.RemainingTime })
	case Priority:
		return byKey(func(p Process) int { return p.Priority })
	default:
		return nil
	}
}

// byKey orders by the key, then arrival time, then identifier.
func byKey(key func(Process) int) func(a, b Process) bool {
	return func(a, b Process) bool {
		ka, kb := key(a), key(b)
		if ka != kb {
			return ka < kb
		}

		if a.ArrivalTime != b.ArrivalTime {
			return a.ArrivalTime < b.ArrivalTime
		}

		return a.ID < b.ID
	}
}
