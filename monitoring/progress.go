package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how many processes of a simulation have completed.
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// Update replaces all the counters at once.
func (b *ProgressBar) Update(total, finished, inProgress uint64) {
	b.Lock()
	defer b.Unlock()

	b.Total = total
	b.Finished = finished
	b.InProgress = inProgress
}

// Restart clears the counters and restarts the clock.
func (b *ProgressBar) Restart(total uint64) {
	b.Lock()
	defer b.Unlock()

	b.StartTime = time.Now()
	b.Total = total
	b.Finished = 0
	b.InProgress = 0
}

type progressSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) snapshot() progressSnapshot {
	b.Lock()
	defer b.Unlock()

	return progressSnapshot{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}
