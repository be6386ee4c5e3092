package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Delivery failure (bus unreachable, all attempts rejected)
	ExitCommandError = 2 // Command error (bad flags, invalid frame, unwritable receipt)
)

// Error codes reported in JSON output.
const (
	ErrCodeConfig     = "E101" // configuration could not be loaded
	ErrCodeInput      = "E102" // bad flag or frame file
	ErrCodeValidation = "E103" // frame failed schema validation
	ErrCodeReference  = "E104" // edge references an unknown node
	ErrCodeDelivery   = "E105" // all delivery attempts failed
	ErrCodeReceipt    = "E106" // receipt could not be written or read
	ErrCodeLedger     = "E107" // ledger could not be opened or queried
	ErrCodeServe      = "E108" // receipt API failed
)

// ExitError carries the process exit code for a failed command.
// Reported is set once the failure has been shown through an
// OutputFormatter, so main does not print it again.
type ExitError struct {
	Code     int
	Reported bool
	err      error
}

func exitError(code int, message string, err error) *ExitError {
	if err == nil {
		return &ExitError{Code: code, err: errors.New(message)}
	}
	return &ExitError{Code: code, err: fmt.Errorf("%s: %w", message, err)}
}

func (e *ExitError) Error() string { return e.err.Error() }

func (e *ExitError) Unwrap() error { return e.err }

// ExitCode maps err to a process exit code. Errors without an
// ExitError in their chain exit with ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitFailure
}

// Reported reports whether err was already written to the user.
func Reported(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Reported
}

// Texter is implemented by results with a human-readable rendering.
type Texter interface {
	Text() string
}

// OutputFormatter handles JSON vs text output for CLI commands.
// Text-mode errors go to ErrWriter when set; everything else goes to Writer.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
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

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(CLIResponse{Status: "ok", Data: data})
	}

	if t, ok := data.(Texter); ok {
		_, err := fmt.Fprintln(f.Writer, t.Text())
		return err
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	_, err := fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	return err
}

// fail reports err through the formatter and returns it as a reported ExitError.
func fail(out *OutputFormatter, exitCode int, errCode, message string, err error) error {
	ee := exitError(exitCode, message, err)
	ee.Reported = out.Error(errCode, ee.Error(), nil) == nil
	return ee
}
