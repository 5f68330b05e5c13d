package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/sarchlab/cpusched/sched"
)

// UnitUsage is the busy time of one processing unit.
type UnitUsage struct {
	Unit  int
	Busy  int
	Ticks int
}

// Utilization returns the fraction of its ticks the unit spent running a
// process.
func (u UnitUsage) Utilization() float64 {
	if u.Ticks == 0 {
		return 0
	}

	return float64(u.Busy) / float64(u.Ticks)
}

// Usage counts the busy ticks of every unit. A unit only counts the ticks
// during which it existed.
func Usage(timeline []sched.TickReport) []UnitUsage {
	var usage []UnitUsage

	for _, r := range timeline {
		for len(usage) < len(r.Executed) {
			usage = append(usage, UnitUsage{Unit: len(usage)})
		}

		for u, id := range r.Executed {
			usage[u].Ticks++
			if id != "" {
				usage[u].Busy++
			}
		}
	}

	return usage
}

// UtilizationTable writes the busy time of every unit.
func UtilizationTable(w io.Writer, timeline []sched.TickReport) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Unit", "Busy", "Ticks", "Utilization"})

	for _, u := range Usage(timeline) {
		table.Append([]string{
			strconv.Itoa(u.Unit),
			strconv.Itoa(u.Busy),
			strconv.Itoa(u.Ticks),
			fmt.Sprintf("%.1f%%", 100*u.Utilization()),
		})
	}

	table.Render()
}
