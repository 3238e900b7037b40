// Package validator collects schema issues found in settings documents.
package validator

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/settler/internal/errors"
)

// Severity represents the impact of a validation issue.
type Severity int

const (
	// SeverityError indicates a blocking validation failure.
	SeverityError Severity = iota
	// SeverityWarning indicates a non-blocking issue, such as a key that a
	// strict object will drop.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue represents a single validation problem.
type Issue struct {
	// Severity indicates the impact of the issue.
	Severity Severity `json:"severity"`
	// Field is the dotted path of the offending value. Empty means the root.
	Field string `json:"field,omitempty"`
	// Message is a human-readable description of the problem.
	Message string `json:"message"`
	// Value is the actual value that failed validation (optional).
	Value any `json:"value,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if i.Field != "" {
		sb.WriteString("field \"")
		sb.WriteString(i.Field)
		sb.WriteString("\": ")
	}
	sb.WriteString(i.Message)
	if i.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", i.Value)
	}
	return sb.String()
}

// Result aggregates validation issues.
type Result struct {
	Issues []Issue `json:"issues"`
}

// HasErrors returns true if any issue has SeverityError.
func (r *Result) HasErrors() bool {
	return len(r.Errors()) > 0
}

// HasWarnings returns true if any issue has SeverityWarning.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

// AddError adds an error issue to the result.
func (r *Result) AddError(field, message string, value any) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
		Value:    value,
	})
}

// AddWarning adds a warning issue to the result.
func (r *Result) AddWarning(field, message string, value any) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
		Value:    value,
	})
}

// Merge appends all issues of other.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
}

// Errors returns a slice of all issues with SeverityError.
func (r *Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns a slice of all issues with SeverityWarning.
func (r *Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Result) filter(s Severity) []Issue {
	if r == nil {
		return nil
	}
	var res []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			res = append(res, i)
		}
	}
	return res
}

// Err returns nil when the result has no errors, otherwise an *Error that
// matches errors.ErrValidation.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &Error{Result: r}
}

// Error is the error form of a failed Result.
type Error struct {
	Result *Result
}

func (e *Error) Error() string {
	errs := e.Result.Errors()
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, issue := range errs {
		msgs[i] = issue.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(errs), strings.Join(msgs, "; "))
}

// Is reports ErrValidation so callers can test with errors.Is.
func (e *Error) Is(target error) bool {
	return target == errors.ErrValidation
}

// ResultFrom extracts the Result carried by err, if any.
func ResultFrom(err error) (*Result, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Result, true
	}
	return nil, false
}
