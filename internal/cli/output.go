package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/javajack/rowcalc"
)

// Process exit codes of the rowcalc binary.
const (
	ExitOK        = 0 // all rows evaluated; lint found at most warnings
	ExitRowErrors = 1 // a --strict sweep had failing rows, or lint found errors
	ExitBadInput  = 2 // settings, workbook or arguments could not be used
)

// ExitError attaches an exit code to a command failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// exitf builds an ExitError; format follows fmt.Errorf, so %w wraps.
func exitf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// rowFailures returns an ExitRowErrors error when the last sweep had failures.
func rowFailures(report rowcalc.Report) error {
	if report.OK() {
		return nil
	}
	return exitf(ExitRowErrors, "%d of %d rows have errors", len(report.Errors()), report.Evaluated)
}

// ExitCode maps a command error to the process exit code. Errors raised by
// cobra itself (unknown flags, wrong argument counts) count as bad input.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitBadInput
}

// RowView is the machine-readable form of a row.
type RowView struct {
	Index      int    `json:"index" yaml:"index"`
	Variable   string `json:"variable,omitempty" yaml:"variable,omitempty"`
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
	Result     string `json:"result,omitempty" yaml:"result,omitempty"`
	Comment    string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// SheetView is the machine-readable form of a sheet after a sweep.
type SheetView struct {
	Rows   []RowView `json:"rows" yaml:"rows"`
	Status string    `json:"status" yaml:"status"`
}

func newSheetView(sheet *rowcalc.Sheet) SheetView {
	rows := sheet.Rows()
	view := SheetView{Rows: make([]RowView, 0, len(rows)), Status: sheet.Status()}
	for i, r := range rows {
		if r.IsBlank() {
			continue
		}
		view.Rows = append(view.Rows, RowView{
			Index:      i,
			Variable:   r.BindingName(),
			Expression: r.Expression,
			Result:     r.DisplayResult(),
			Comment:    r.Comment,
		})
	}
	return view
}

// writeSheet renders the sheet in the requested format.
func writeSheet(w io.Writer, format string, sheet *rowcalc.Sheet) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newSheetView(sheet))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newSheetView(sheet)); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, sheet.Describe())
		return err
	}
}

// writeIssues renders lint results in the requested format.
func writeIssues(w io.Writer, format string, issues []rowcalc.ValidationIssue) error {
	type issueView struct {
		Severity string `json:"severity" yaml:"severity"`
		Row      int    `json:"row" yaml:"row"`
		Message  string `json:"message" yaml:"message"`
	}
	views := make([]issueView, 0, len(issues))
	for _, is := range issues {
		sev := "error"
		if is.Severity == rowcalc.SeverityWarning {
			sev = "warning"
		}
		views = append(views, issueView{Severity: sev, Row: is.Row, Message: is.Message})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(issues) == 0 {
			_, err := fmt.Fprintln(w, "no issues")
			return err
		}
		for _, is := range issues {
			if _, err := fmt.Fprintln(w, is.String()); err != nil {
				return err
			}
		}
		return nil
	}
}
