// Package report renders simulation results as text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/cpusched/sched"
)

// A Slice is a maximal run of consecutive ticks during which a unit ran the
// same process. Idle time is a slice with an empty ProcessID.
type Slice struct {
	Unit      int    `json:"unit"`
	ProcessID string `json:"process_id"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Duration is the number of ticks in the slice.
func (s Slice) Duration() int {
	return s.End - s.Start
}

// Slices folds a timeline into per-unit slices, ordered by unit and then by
// time. Units that were added later are idle before they existed.
func Slices(timeline []sched.TickReport) [][]Slice {
	units := 0
	for _, r := range timeline {
		if len(r.Executed) > units {
			units = len(r.Executed)
		}
	}

	out := make([][]Slice, units)

	for _, r := range timeline {
		start := r.Time - 1

		for u := 0; u < units; u++ {
			id := ""
			if u < len(r.Executed) {
				id = r.Executed[u]
			}

			row := out[u]
			if n := len(row); n > 0 && row[n-1].ProcessID == id && row[n-1].End == start {
				row[n-1].End = r.Time
				continue
			}

			out[u] = append(row, Slice{Unit: u, ProcessID: id, Start: start, End: r.Time})
		}
	}

	return out
}

// Gantt writes one strip per unit. Process IDs are shown by name when the
// state knows them.
func Gantt(w io.Writer, st sched.State, timeline []sched.TickReport) {
	_, _ = fmt.Fprintln(w, "Gantt schedule")

	if len(timeline) == 0 {
		_, _ = fmt.Fprintln(w, "(no ticks)")
		return
	}

	for u, row := range Slices(timeline) {
		var top, bottom strings.Builder

		top.WriteString("|")
		bottom.WriteString(fmt.Sprintf("%-7s", ""))

		for _, s := range row {
			label := "-"
			if s.ProcessID != "" {
				label = displayName(st, s.ProcessID)
			}

			width := max(len(label)+2, 2*s.Duration()+1)
			pad := width - len(label)
			top.WriteString(strings.Repeat(" ", pad/2))
			top.WriteString(label)
			top.WriteString(strings.Repeat(" ", pad-pad/2))
			top.WriteString("|")

			bottom.WriteString(fmt.Sprintf("%-*d", width+1, s.Start))
		}

		bottom.WriteString(fmt.Sprint(row[len(row)-1].End))

		_, _ = fmt.Fprintf(w, "Unit %-2d%s\n", u, top.String())
		_, _ = fmt.Fprintln(w, bottom.String())
	}
}

// ReadyQueue writes the ready queue, head first.
func ReadyQueue(w io.Writer, st sched.State) {
	names := make([]string, 0, len(st.ReadyQueue))
	for _, p := range st.ReadyQueue {
		names = append(names, p.Name)
	}

	_, _ = fmt.Fprintf(w, "Ready queue @%d: [%s]\n",
		st.CurrentTime, strings.Join(names, " "))
}

func displayName(st sched.State, id string) string {
	p, loc := st.Current(id)
	if loc == sched.LocationUnknown || p.Name == "" {
		return id
	}

	return p.Name
}
