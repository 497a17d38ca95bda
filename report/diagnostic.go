package report

import (
	"fmt"
	"strings"
)

// Kind is the category of a diagnostic.
type Kind int

// Enumeration of diagnostic kinds.
const (
	KindRead    Kind = iota // a source unit could not be loaded
	KindParse               // syntax errors
	KindType                // semantic analysis errors
	KindCycle               // illegal bytecode dependency cycles
	KindCodegen             // IR or bytecode generation failures
	KindConfig              // invalid settings
)

var kindNames = map[Kind]string{
	KindRead:    "read",
	KindParse:   "parse",
	KindType:    "type",
	KindCycle:   "cycle",
	KindCodegen: "codegen",
	KindConfig:  "config",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// Severity is how bad a diagnostic is.  Only errors block stage progression.
type Severity int

// Enumeration of severities.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic is a single message produced during a run.
type Diagnostic struct {
	Kind     Kind
	Severity Severity

	// Source is the name of the source unit the diagnostic is attached to.  It
	// may be empty for run-wide messages.
	Source string

	// Contract is the fully qualified name of the contract the diagnostic is
	// about, if any.
	Contract string

	// Span may be nil.
	Span *TextSpan

	Message string

	// Members lists every participant of a reported cycle.
	Members []string
}

// IsError returns whether the diagnostic blocks progress.
func (d *Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

func (d *Diagnostic) Error() string {
	sb := strings.Builder{}
	if d.Source != "" {
		sb.WriteString(d.Source)
		if d.Span != nil {
			sb.WriteString(":" + d.Span.String())
		}
		sb.WriteString(": ")
	}

	fmt.Fprintf(&sb, "%s %s: %s", d.Kind, d.Severity, d.Message)
	return sb.String()
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []*Diagnostic

// HasErrors returns whether any diagnostic in the list is an error.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.IsError() {
			return true
		}
	}

	return false
}

// OfKind returns the diagnostics of the given kind.
func (ds Diagnostics) OfKind(kind Kind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}

	return out
}

func (ds Diagnostics) Error() string {
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Error()
	}

	return strings.Join(msgs, "\n")
}

// FromError converts a Go error into a diagnostic.  Local compile errors keep
// their span.
func FromError(kind Kind, source string, err error) *Diagnostic {
	d := &Diagnostic{
		Kind:     kind,
		Severity: SeverityError,
		Source:   source,
		Message:  err.Error(),
	}

	if lce, ok := err.(*LocalCompileError); ok {
		d.Span = lce.Span
	}

	return d
}
