// Package report keeps the operator-visible trace of path tracking runs.
//
// A Reporter appends one line per processed module, holding the module's
// source file name, to its output and collects per-phase events for a
// summary.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirkon/trackpaths/internal/outcome"
)

// Reporter collects run events and writes the module trace.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	reports []Report
}

// New is [Reporter] constructor. A nil out drops the module trace.
func New(out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}

	return &Reporter{out: out}
}

// Report represents a single event of a run.
type Report struct {
	Phase    Phase
	Code     outcome.Code
	Module   string
	Function string
	Message  string
}

// Phase marks the run stage where a report was generated.
type Phase int

const (
	phaseInvalid Phase = iota
	PhaseGate          // source file name check
	PhaseScan          // annotation table scanning
	PhaseLocate        // target block lookup
	PhaseTrack         // path collection and instrumentation
)

func (p Phase) String() string {
	switch p {
	case PhaseGate:
		return "gate"
	case PhaseScan:
		return "scan"
	case PhaseLocate:
		return "locate"
	case PhaseTrack:
		return "track"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// Module writes the source file name of a processed module as a new line
// of the trace.
func (r *Reporter) Module(sourceFile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := fmt.Fprintln(r.out, sourceFile); err != nil {
		return fmt.Errorf("write module trace: %w", err)
	}

	return nil
}

// ReporterPhase binds a Reporter to a fixed phase and module.
type ReporterPhase struct {
	parent *Reporter
	phase  Phase
	module string
}

// Phase returns a phase-bound reporter that sets the given phase and module
// for all reports produced through it.
func (r *Reporter) Phase(p Phase, module string) *ReporterPhase {
	return &ReporterPhase{parent: r, phase: p, module: module}
}

// Report adds a new record to the reporter.
func (r *Reporter) Report(rep Report) {
	r.mu.Lock()
	r.reports = append(r.reports, rep)
	r.mu.Unlock()
}

// Report records an event under the bound phase. An empty message is
// replaced with the code description.
func (rp *ReporterPhase) Report(code outcome.Code, function, message string) {
	if message == "" {
		message = code.Description()
	}
	rp.parent.Report(Report{
		Phase:    rp.phase,
		Code:     code,
		Module:   rp.module,
		Function: function,
		Message:  message,
	})
}

// Reports returns a snapshot of all collected records.
func (r *Reporter) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// PrintSummary prints all collected reports in a compact, human-readable form.
func (r *Reporter) PrintSummary(w io.Writer) {
	for _, rep := range r.Reports() {
		fn := rep.Function
		if fn == "" {
			fn = "-"
		}
		_, _ = fmt.Fprintf(w, "[%s] %s: %s (%s:%s)\n",
			rep.Phase,
			rep.Code,
			rep.Message,
			rep.Module,
			fn)
	}
}
