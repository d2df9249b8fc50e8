package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/seqharness/internal/scenario"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Filter string
}

// FileValidation is the validation outcome of one file.
type FileValidation struct {
	File  string `json:"file"`
	Name  string `json:"name,omitempty"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateReport is the outcome of a validate command.
type ValidateReport struct {
	Files   []FileValidation `json:"files"`
	Valid   int              `json:"valid"`
	Invalid int              `json:"invalid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenario files without running them",
		Long: `Decode every scenario file strictly and check it against the
scenario schema.

Examples:
  seqharness validate ./scenarios
  seqharness validate ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}
	files, err := scenario.Discover(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	report := ValidateReport{Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		v := FileValidation{File: file}
		s, err := scenario.Load(file)
		if err != nil {
			v.Error = err.Error()
			report.Invalid++
		} else {
			v.Name = s.Name
			v.Valid = true
			report.Valid++
		}
		report.Files = append(report.Files, v)
	}

	f := opts.formatter(cmd)
	if f.JSON() {
		if report.Invalid > 0 {
			if err := f.Failure("INVALID_SCENARIO", fmt.Sprintf("%d invalid scenario(s)", report.Invalid), report); err != nil {
				return err
			}
		} else if err := f.Success(report); err != nil {
			return err
		}
	} else {
		for _, v := range report.Files {
			if v.Valid {
				fmt.Fprintf(f.Writer, "✓ %s\n", v.File)
				continue
			}
			fmt.Fprintf(f.Writer, "✗ %s\n  %s\n", v.File, v.Error)
		}
		fmt.Fprintf(f.Writer, "%d valid, %d invalid\n", report.Valid, report.Invalid)
	}

	if report.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario(s)", report.Invalid))
	}
	return nil
}
