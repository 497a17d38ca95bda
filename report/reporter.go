package report

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Enumeration of the different log levels.
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and closing notification (success/fail)
	LogLevelWarning        // errors, warnings, and closing message
	LogLevelVerbose        // errors, warnings, version header, phase progress, closing message
)

// ParseLogLevel converts a log level name into its enumerated value.  Unknown
// names default to verbose.
func ParseLogLevel(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarning
	default:
		return LogLevelVerbose
	}
}

// Reporter is responsible for storing and displaying every diagnostic produced
// during a compiler run.  It is safe for concurrent use.
type Reporter struct {
	LogLevel int

	// diags is the append-only list of all diagnostics of the current run
	diags Diagnostics

	errorCount int

	// warnings are displayed at the end of the run
	warnings Diagnostics

	// sourceText is used to show the erroneous code under an error message
	sourceText func(name string) (string, bool)

	// m synchronizes collection and printing
	m *sync.Mutex

	phase *phaseDisplay
}

// NewReporter creates a new reporter with the given log level.
func NewReporter(loglevel int) *Reporter {
	return &Reporter{
		LogLevel: loglevel,
		m:        &sync.Mutex{},
	}
}

// SetSourceLookup sets the function used to fetch source text for display.
func (r *Reporter) SetSourceLookup(f func(name string) (string, bool)) {
	r.m.Lock()
	r.sourceText = f
	r.m.Unlock()
}

// Report records a diagnostic.  Errors are displayed immediately and warnings
// are deferred until the end of the run.
func (r *Reporter) Report(d *Diagnostic) {
	r.m.Lock()
	defer r.m.Unlock()

	r.diags = append(r.diags, d)

	if d.IsError() {
		r.errorCount++

		if r.LogLevel > LogLevelSilent {
			r.endPhase(false)
			r.displayDiagnostic(d)
		}
	} else {
		r.warnings = append(r.warnings, d)
	}
}

// ReportAll records every diagnostic in the list in order.
func (r *Reporter) ReportAll(ds Diagnostics) {
	for _, d := range ds {
		r.Report(d)
	}
}

// Errorf reports an error diagnostic of the given kind.
func (r *Reporter) Errorf(kind Kind, source string, msg string, args ...interface{}) {
	r.Report(&Diagnostic{
		Kind:     kind,
		Severity: SeverityError,
		Source:   source,
		Message:  fmt.Sprintf(msg, args...),
	})
}

// Diagnostics returns a copy of all diagnostics recorded so far.
func (r *Reporter) Diagnostics() Diagnostics {
	r.m.Lock()
	defer r.m.Unlock()

	out := make(Diagnostics, len(r.diags))
	copy(out, r.diags)
	return out
}

// ErrorCount returns the number of errors recorded.
func (r *Reporter) ErrorCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount
}

// WarningCount returns the number of non-error diagnostics recorded.
func (r *Reporter) WarningCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return len(r.warnings)
}

// ShouldProceed indicates whether no errors have been recorded.
func (r *Reporter) ShouldProceed() bool {
	return r.ErrorCount() == 0
}

// Clear discards every recorded diagnostic.
func (r *Reporter) Clear() {
	r.m.Lock()
	defer r.m.Unlock()

	r.diags = nil
	r.warnings = nil
	r.errorCount = 0
}

// CatchErrors recovers a panic raised by a collaborator and records it as a
// diagnostic of the given kind.  It must be deferred directly.
func (r *Reporter) CatchErrors(kind Kind, source, contract string) {
	if x := recover(); x != nil {
		r.Report(&Diagnostic{
			Kind:     kind,
			Severity: SeverityError,
			Source:   source,
			Contract: contract,
			Message:  fmt.Sprintf("internal error: %v\n%s", x, debug.Stack()),
		})
	}
}

// -----------------------------------------------------------------------------
// Below are the "aesthetic" reporting functions that only run at the verbose
// log level.

// ReportCompileHeader displays the compiler version and target.
func (r *Reporter) ReportCompileHeader(target string, viaIR bool) {
	if r.LogLevel == LogLevelVerbose {
		displayCompileHeader(target, viaIR)
	}
}

// BeginPhase starts a phase spinner.
func (r *Reporter) BeginPhase(phase string) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.LogLevel == LogLevelVerbose {
		r.phase = beginPhase(phase)
	}
}

// EndPhase stops the current phase spinner.
func (r *Reporter) EndPhase() {
	r.m.Lock()
	defer r.m.Unlock()

	r.endPhase(r.errorCount == 0)
}

func (r *Reporter) endPhase(success bool) {
	if r.phase != nil {
		r.phase.end(success)
		r.phase = nil
	}
}

// ReportCompilationFinished displays deferred warnings and the closing message.
func (r *Reporter) ReportCompilationFinished() {
	r.m.Lock()
	defer r.m.Unlock()

	if r.LogLevel >= LogLevelWarning {
		for _, w := range r.warnings {
			r.displayDiagnostic(w)
		}
	}

	if r.LogLevel > LogLevelSilent {
		displayCompilationFinished(r.errorCount == 0, r.errorCount, len(r.warnings))
	}
}
