package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/seqharness/internal/harness"
	"github.com/roach88/seqharness/internal/scenario"
	"github.com/roach88/seqharness/internal/store"
	"github.com/roach88/seqharness/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Filter   string // scenario filter (glob pattern)
	Update   bool   // regenerate golden files
	DB       string // record runs into this database
	Parallel int    // scenarios run concurrently
	Watch    bool   // rerun when scenario files change
}

// Golden comparison outcomes.
const (
	GoldenMatch    = "match"
	GoldenMismatch = "mismatch"
	GoldenMissing  = "missing"
	GoldenUpdated  = "updated"
)

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Pass     bool     `json:"pass"`
	Path     string   `json:"path,omitempty"`
	Requests int      `json:"requests"`
	Golden   string   `json:"golden,omitempty"`
	RunID    string   `json:"run_id,omitempty"`
	Errors   []string `json:"errors,omitempty"`

	trace *trace.Result
}

// RunReport is the outcome of a run command.
type RunReport struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenarios-dir>",
		Short: "Run scenarios",
		Long: `Run every scenario file (.yaml, .yml) under a directory.

A scenario passes when its expectations hold and, if a golden file exists
at golden/<name>.golden next to it, its trace matches that file.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  seqharness run ./scenarios
  seqharness run ./scenarios --filter "login_*"
  seqharness run ./scenarios --update
  seqharness run ./scenarios --db runs.db --parallel 4
  seqharness run ./scenarios --watch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return watch(ctx, args[0], opts, cmd)
			}
			return runAndReport(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record runs in a SQLite database")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 1, "number of scenarios run concurrently")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "rerun when scenario files change")

	return cmd
}

func runAndReport(ctx context.Context, opts *RunOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := runScenarios(ctx, opts, dir, opts.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	if err := printRunReport(opts.formatter(cmd), report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", report.Failed, report.Total))
	}
	return nil
}

func runScenarios(ctx context.Context, opts *RunOptions, dir string, logger *slog.Logger) (RunReport, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return RunReport{}, NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}
	if opts.Parallel < 1 {
		return RunReport{}, NewExitError(ExitCommandError, "--parallel must be at least 1")
	}

	files, err := scenario.Discover(dir, opts.Filter)
	if err != nil {
		return RunReport{}, WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	results := make([]ScenarioResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, file := range files {
		g.Go(func() error {
			results[i] = runScenarioFile(gctx, file, opts, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunReport{}, err
	}

	if opts.DB != "" {
		if err := recordRuns(ctx, opts.DB, results); err != nil {
			return RunReport{}, WrapExitError(ExitCommandError, "failed to record runs", err)
		}
	}

	report := RunReport{Scenarios: results, Total: len(results)}
	for _, r := range results {
		if r.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

// runScenarioFile loads, runs and golden-checks one file. It never fails;
// problems become errors on the result.
func runScenarioFile(ctx context.Context, file string, opts *RunOptions, logger *slog.Logger) ScenarioResult {
	base := filepath.Base(file)
	result := ScenarioResult{Name: strings.TrimSuffix(base, filepath.Ext(base)), File: file}

	s, err := scenario.Load(file)
	if err != nil {
		result.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return result
	}
	result.Name = s.Name

	res, err := scenario.Run(ctx, s, harness.WithLogger(logger.With("scenario", s.Name)))
	if err != nil {
		result.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return result
	}
	result.trace = res.Trace
	result.Path = res.Path
	result.Requests = res.Trace.Count(trace.TypeRequest)
	result.Errors = res.Errors()

	golden, err := checkGolden(file, res, opts.Update)
	result.Golden = golden
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	result.Pass = len(result.Errors) == 0
	return result
}

// checkGolden compares res with the file's golden trace, or rewrites it.
func checkGolden(file string, res *scenario.Result, update bool) (string, error) {
	snap, err := res.Snapshot()
	if err != nil {
		return "", fmt.Errorf("failed to encode trace: %w", err)
	}
	path := scenario.GoldenPath(file)

	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, snap, 0644); err != nil {
			return "", fmt.Errorf("failed to write golden file: %w", err)
		}
		return GoldenUpdated, nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return GoldenMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, snap) {
		return GoldenMismatch, fmt.Errorf("trace does not match golden file (run with --update to regenerate)")
	}
	return GoldenMatch, nil
}

func recordRuns(ctx context.Context, path string, results []ScenarioResult) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	for i := range results {
		r := &results[i]
		if r.trace == nil {
			continue
		}
		run := &store.Run{
			Scenario: r.Name,
			Pass:     r.Pass,
			Path:     r.Path,
			Errors:   r.Errors,
			Events:   r.trace.Events,
		}
		if run.Errors == nil {
			run.Errors = []string{}
		}
		if err := st.WriteRun(ctx, run); err != nil {
			return err
		}
		r.RunID = run.ID
	}
	return nil
}

func printRunReport(f *OutputFormatter, report RunReport) error {
	if f.JSON() {
		if report.Failed > 0 {
			return f.Failure("SCENARIO_FAILED", fmt.Sprintf("%d scenario(s) failed", report.Failed), report)
		}
		return f.Success(report)
	}

	if report.Total == 0 {
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return nil
	}

	rows := make([][]any, 0, len(report.Scenarios))
	for _, r := range report.Scenarios {
		rows = append(rows, []any{f.Status(r.Pass), r.Name, r.Requests, r.Path, r.Golden})
	}
	f.Table([]string{"Status", "Scenario", "Requests", "Path", "Golden"}, rows)

	for _, r := range report.Scenarios {
		if r.Pass {
			continue
		}
		fmt.Fprintf(f.Writer, "\n%s (%s)\n", r.Name, r.File)
		for _, e := range r.Errors {
			fmt.Fprintf(f.Writer, "  %s\n", e)
		}
	}
	fmt.Fprintf(f.Writer, "\n%d passed, %d failed, %d total\n", report.Passed, report.Failed, report.Total)
	return nil
}
