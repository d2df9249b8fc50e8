package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/seqharness/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Scenario string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <db> [run-id]",
		Short: "Show recorded runs",
		Long: `List the runs recorded with run --db, or show the events of one run.

Examples:
  seqharness trace runs.db
  seqharness trace runs.db --scenario login_round_trip
  seqharness trace runs.db 0190a4d2-...`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 2 {
				runID = args[1]
			}
			return runTrace(cmd.Context(), opts, args[0], runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only list runs of this scenario")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, dbPath, runID string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(dbPath); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", dbPath))
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	f := opts.formatter(cmd)
	if runID == "" {
		return listRuns(ctx, f, st, opts.Scenario)
	}
	return showRun(ctx, f, st, runID)
}

func listRuns(ctx context.Context, f *OutputFormatter, st *store.Store, scenario string) error {
	runs, err := st.ListRuns(ctx, scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if f.JSON() {
		return f.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	rows := make([][]any, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []any{r.Seq, r.ID, r.Scenario, f.Status(r.Pass), r.Path})
	}
	f.Table([]string{"Seq", "Run", "Scenario", "Status", "Path"}, rows)
	return nil
}

func showRun(ctx context.Context, f *OutputFormatter, st *store.Store, runID string) error {
	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	if f.JSON() {
		return f.Success(run)
	}

	fmt.Fprintf(f.Writer, "%s %s (%s)\n", f.Status(run.Pass), run.Scenario, run.ID)
	rows := make([][]any, 0, len(run.Events))
	for _, ev := range run.Events {
		subject := ev.Detail
		switch {
		case ev.Method != "":
			subject = ev.Method + " " + ev.Path
		case ev.Request != 0:
			subject = fmt.Sprintf("#%d %s", ev.Request, ev.Outcome)
			if ev.Status != 0 {
				subject += fmt.Sprintf(" %d", ev.Status)
			}
		}
		rows = append(rows, []any{ev.Seq, ev.Type, subject, truncate(ev.Body, 60)})
	}
	f.Table([]string{"Seq", "Type", "Event", "Body"}, rows)
	for _, e := range run.Errors {
		fmt.Fprintf(f.Writer, "  %s\n", e)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
