package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario or validation failure
	ExitCommandError = 2 // Command error (invalid paths, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if err is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON reports whether the formatter writes JSON.
func (f *OutputFormatter) JSON() bool { return f.Format == "json" }

// Success writes data as an "ok" response in JSON mode, or prints it.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Failure writes data as an "error" response in JSON mode. Text mode callers
// print their own report.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	if !f.JSON() {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
		return nil
	}
	return json.NewEncoder(f.Writer).Encode(CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	})
}

// VerboseLog writes a diagnostic line in verbose mode.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Table renders rows under header with the light box style.
func (f *OutputFormatter) Table(header []string, rows [][]any) {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	h := make(table.Row, len(header))
	for i, c := range header {
		h[i] = c
	}
	w.AppendHeader(h)
	for _, r := range rows {
		row := make(table.Row, len(r))
		copy(row, r)
		w.AppendRow(row)
	}
	fmt.Fprintln(f.Writer, w.Render())
}

// Status colours PASS green and FAIL red when the writer is a colour
// terminal, and leaves them plain otherwise.
func (f *OutputFormatter) Status(pass bool) string {
	out := termenv.NewOutput(f.Writer)
	if pass {
		return out.String("PASS").Foreground(termenv.ANSIGreen).String()
	}
	return out.String("FAIL").Foreground(termenv.ANSIRed).Bold().String()
}
