package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cpusched/datarecording"
)

func newInspectCmd(_ *rootOptions) *cobra.Command {
	var (
		db    string
		runID string
	)

	cmd := &cobra.Command{
		Use:     "inspect",
		Short:   "Print the completions stored in a recording",
		Example: `  schedsim inspect --db schedsim_recording_cq0k.sqlite3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader, err := datarecording.NewReader(db)
			if err != nil {
				return err
			}
			defer reader.Close()

			reader.MapTable(datarecording.ExecTableName, datarecording.ExecInfo{})
			reader.MapTable(datarecording.CompletionTableName,
				datarecording.CompletionEntry{})

			params := datarecording.QueryParams{OrderBy: "RunID, FinishTime, ProcessID"}
			if runID != "" {
				params.Where = "RunID = ?"
				params.Args = []any{runID}
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			info, _, err := reader.Query(ctx, datarecording.ExecTableName,
				datarecording.QueryParams{})
			if err != nil {
				return err
			}

			for _, row := range info {
				e := row.(*datarecording.ExecInfo)
				fmt.Fprintf(out, "%s: %s\n", e.Property, e.Value)
			}

			rows, total, err := reader.Query(ctx,
				datarecording.CompletionTableName, params)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%d completed processes\n", total)

			runs := map[string]bool{}
			table := tablewriter.NewWriter(out)
			table.SetAutoFormatHeaders(false)
			table.SetHeader([]string{
				"Run", "ID", "Name", "Arrival", "Burst", "Priority",
				"Start", "Finish", "Wait", "Turnaround", "Response",
			})

			for _, row := range rows {
				c := row.(*datarecording.CompletionEntry)
				runs[c.RunID] = true
				table.Append([]string{
					c.RunID, c.ProcessID, c.Name,
					strconv.Itoa(c.ArrivalTime),
					strconv.Itoa(c.BurstTime),
					strconv.Itoa(c.Priority),
					strconv.Itoa(c.StartTime),
					strconv.Itoa(c.FinishTime),
					strconv.Itoa(c.WaitingTime),
					strconv.Itoa(c.TurnaroundTime),
					strconv.Itoa(c.ResponseTime),
				})
			}

			table.Render()

			ids := make([]string, 0, len(runs))
			for id := range runs {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			fmt.Fprintf(out, "Runs: %v\n", ids)

			return nil
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "Recording file (*.sqlite3)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show this run")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
