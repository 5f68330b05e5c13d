package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/sarchlab/cpusched/sched"
)

var processHeader = []string{
	"ID", "Name", "Priority", "Burst", "Arrival",
	"Start", "Finish", "Wait", "Turnaround", "Response", "Status",
}

// ProcessTable writes every defined process in definition order, with the
// metrics of the completed processes in the footer.
func ProcessTable(w io.Writer, st sched.State) {
	_, _ = fmt.Fprintln(w, "Schedule table")

	rows := make([][]string, 0, len(st.Processes))
	for _, def := range st.Processes {
		p, loc := st.Current(def.ID)
		rows = append(rows, processRow(p, loc))
	}

	m := st.Metrics()

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(processHeader)
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "", "", "", "",
		fmt.Sprintf("Average\n%.2f", m.AverageWaitingTime),
		fmt.Sprintf("Average\n%.2f", m.AverageTurnaroundTime),
		fmt.Sprintf("Average\n%.2f", m.AverageResponseTime),
		fmt.Sprintf("Throughput\n%.2f/t", m.Throughput)})
	table.Render()
}

// MetricsTable writes the aggregated metrics as a two-column table.
func MetricsTable(w io.Writer, m sched.Metrics) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Completed", strconv.Itoa(m.Completed)},
		{"Average waiting time", fmt.Sprintf("%.2f", m.AverageWaitingTime)},
		{"Average turnaround time", fmt.Sprintf("%.2f", m.AverageTurnaroundTime)},
		{"Average response time", fmt.Sprintf("%.2f", m.AverageResponseTime)},
		{"Throughput", fmt.Sprintf("%.4f/t", m.Throughput)},
	})
	table.Render()
}

func processRow(p sched.Process, loc sched.Location) []string {
	row := []string{
		p.ID,
		p.Name,
		strconv.Itoa(p.Priority),
		strconv.Itoa(p.BurstTime),
		strconv.Itoa(p.ArrivalTime),
		"-", "-", "-", "-", "-",
		loc.String(),
	}

	if p.Started {
		row[5] = strconv.Itoa(p.StartTime)
		row[9] = strconv.Itoa(p.ResponseTime)
	}

	if p.Finished {
		row[6] = strconv.Itoa(p.FinishTime)
		row[7] = strconv.Itoa(p.WaitingTime)
		row[8] = strconv.Itoa(p.TurnaroundTime)
	}

	if loc == sched.LocationRunning || loc == sched.LocationReady {
		row[10] = fmt.Sprintf("%s (%d left)", loc, p.RemainingTime)
	}

	return row
}
