package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/settler/internal/errors"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the validation result for the document at source.
func (r *Reporter) Report(source string, result *Result) error {
	if result == nil {
		result = &Result{}
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(source, result)
	default:
		r.reportText(source, result)
		return nil
	}
}

type jsonReport struct {
	Source string  `json:"source"`
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

func (r *Reporter) reportJSON(source string, result *Result) error {
	issues := result.Issues
	if issues == nil {
		issues = []Issue{}
	}
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(jsonReport{
		Source: source,
		Valid:  !result.HasErrors(),
		Issues: issues,
	}), "encoding JSON report")
}

func (r *Reporter) reportText(source string, result *Result) {
	if !result.HasErrors() && !result.HasWarnings() {
		fmt.Fprintln(r.out, color.GreenString("✓ %s is valid", source))
		return
	}

	errs := result.Errors()
	warnings := result.Warnings()

	summary := []string{}
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	fmt.Fprintf(r.out, "%s: %s\n\n", source, strings.Join(summary, ", "))

	if len(errs) > 0 {
		fmt.Fprintln(r.out, "Errors:")
		for _, issue := range errs {
			r.printIssue(issue, color.FgRed)
		}
		fmt.Fprintln(r.out)
	}

	if len(warnings) > 0 {
		fmt.Fprintln(r.out, "Warnings:")
		for _, issue := range warnings {
			r.printIssue(issue, color.FgYellow)
		}
		fmt.Fprintln(r.out)
	}
}

func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	printer := color.New(c).SprintFunc()

	var sb strings.Builder
	sb.WriteString("  • ")

	field := i.Field
	if field == "" {
		field = "(root)"
	}
	sb.WriteString(printer(field))
	sb.WriteString(": ")
	sb.WriteString(i.Message)

	if i.Value != nil {
		valStr := fmt.Sprintf("%v", i.Value)
		if len(valStr) > 50 {
			valStr = valStr[:47] + "..."
		}
		sb.WriteString(color.New(color.FgHiBlack).Sprintf(" [%s]", valStr))
	}

	fmt.Fprintln(r.out, sb.String())
}
