package sched

// Metrics summarizes the performance of the completed processes.
type Metrics struct {
	Completed             int     `json:"completed"`
	AverageWaitingTime    float64 `json:"average_waiting_time"`
	AverageTurnaroundTime float64 `json:"average_turnaround_time"`
	AverageResponseTime   float64 `json:"average_response_time"`
	Throughput            float64 `json:"throughput"`
}

// ComputeMetrics aggregates a list of completed processes. All values are
// zero for an empty list.
func ComputeMetrics(completed []Process) Metrics {
	m := Metrics{Completed: len(completed)}
	if len(completed) == 0 {
		return m
	}

	var waiting, turnaround, response, latest int
	for _, p := range completed {
		waiting += p.WaitingTime
		turnaround += p.TurnaroundTime
		response += p.ResponseTime

		if end := p.ArrivalTime + p.TurnaroundTime; end > latest {
			latest = end
		}
	}

	n := float64(len(completed))
	m.AverageWaitingTime = float64(waiting) / n
	m.AverageTurnaroundTime = float64(turnaround) / n
	m.AverageResponseTime = float64(response) / n

	if latest > 0 {
		m.Throughput = n / float64(latest)
	}

	return m
}
