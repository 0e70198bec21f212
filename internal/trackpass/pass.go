// Package trackpass runs path tracking over LLVM IR modules.
//
// A [Pass] is configured once and then run over modules one by one. For
// every module it checks the source file name, picks annotated functions,
// finds the one holding the target line and instruments the blocks on the
// paths leading to it.
package trackpass

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/rs/zerolog"

	"github.com/sirkon/trackpaths/internal/annotations"
	"github.com/sirkon/trackpaths/internal/llvmir"
	"github.com/sirkon/trackpaths/internal/logging"
	"github.com/sirkon/trackpaths/internal/outcome"
	"github.com/sirkon/trackpaths/internal/pathtrack"
	"github.com/sirkon/trackpaths/internal/report"
)

// DefaultReport is the default name of the report file.
const DefaultReport = "report.txt"

// Options are construction time settings of a pass.
type Options struct {
	// SourceFile must be equal to the module source file name for the
	// module to be processed.
	SourceFile string

	// TargetLine is the line of interest.
	TargetLine int

	// Recorder is the coverage routine name, [llvmir.DefaultRecorder] if empty.
	Recorder string

	// Strategy used to collect blocks, [pathtrack.StrategyPaths] if not set.
	Strategy pathtrack.Strategy

	// Annotation keeps only functions annotated with exactly this string.
	// Any annotation counts when empty.
	Annotation string
}

// Pass instruments modules.
type Pass struct {
	opts   Options
	rep    *report.Reporter
	closer io.Closer
	log    zerolog.Logger

	instrumenter func(m *ir.Module, f *ir.Func, recorder string) pathtrack.Instrumenter
}

// New is [Pass] constructor. Module trace lines go to out.
func New(opts Options, out io.Writer, log zerolog.Logger) *Pass {
	if opts.Recorder == "" {
		opts.Recorder = llvmir.DefaultRecorder
	}
	if !opts.Strategy.Valid() {
		opts.Strategy = pathtrack.StrategyPaths
	}

	return &Pass{
		opts: opts,
		rep:  report.New(out),
		log:  log,
		instrumenter: func(m *ir.Module, f *ir.Func, recorder string) pathtrack.Instrumenter {
			return llvmir.NewInstrumenter(m, f, recorder)
		},
	}
}

// Open creates a pass writing its module trace into the file at the given
// path. The file is truncated.
func Open(opts Options, reportPath string, log zerolog.Logger) (*Pass, error) {
	if reportPath == "" {
		reportPath = DefaultReport
	}

	file, err := os.Create(reportPath)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}

	p := New(opts, file, log)
	p.closer = file
	return p, nil
}

// Close releases the report file of a pass created with [Open].
func (p *Pass) Close() {
	if p.closer == nil {
		return
	}

	logging.Close(p.log, p.closer, "report")
	p.closer = nil
}

// Reporter returns reports collected by the pass.
func (p *Pass) Reporter() *report.Reporter {
	return p.rep
}

// Run processes a module.
func (p *Pass) Run(m *ir.Module) Result {
	log := p.log.With().Str("module", m.SourceFilename).Logger()

	if err := p.rep.Module(m.SourceFilename); err != nil {
		log.Warn().Err(err).Msg("failed to write report")
	}

	if m.SourceFilename != p.opts.SourceFile {
		log.Debug().Str("want", p.opts.SourceFile).Msg("source file mismatch")
		p.rep.Phase(report.PhaseGate, m.SourceFilename).Report(outcome.SourceMismatch(), "", "")
		return unchanged(outcome.SourceMismatch())
	}

	funcs := annotations.Scan(llvmir.Annotations(m), p.opts.Annotation)
	if len(funcs) == 0 {
		log.Debug().Msg("no annotated functions")
		p.rep.Phase(report.PhaseScan, m.SourceFilename).Report(outcome.NoAnnotations(), "", "")
		return unchanged(outcome.NoAnnotations())
	}

	last := unchanged(outcome.TargetNotFound())
	for _, name := range funcs {
		f := llvmir.Func(m, name)
		if f == nil {
			log.Debug().Str("function", name).Msg("annotated function has no body")
			continue
		}

		res, ok := p.track(log.With().Str("function", name).Logger(), m, f)
		if ok {
			return res
		}
		if res.Code != outcome.TargetNotFound() {
			last = res
		}
	}

	code := last.Code
	if code == outcome.TargetNotFound() {
		msg := fmt.Sprintf("line %d is not found in %d annotated function(s)", p.opts.TargetLine, len(funcs))
		p.rep.Phase(report.PhaseLocate, m.SourceFilename).Report(code, "", msg)
	}
	log.Info().Stringer("outcome", code).Msg("module left unchanged")

	return last
}

// track tries to instrument a single function. It reports true when the
// module was modified.
func (p *Pass) track(log zerolog.Logger, m *ir.Module, f *ir.Func) (Result, bool) {
	log.Debug().Msg("examining function")

	g := llvmir.Graph(f)
	target, ok := pathtrack.Locate(g, p.opts.TargetLine)
	if !ok {
		return unchanged(outcome.TargetNotFound()), false
	}
	log.Debug().
		Str("block", g.BlockName(target)).
		Uint64("block_id", pathtrack.BlockID(g.Name, target)).
		Msg("target block found")

	rep := p.rep.Phase(report.PhaseTrack, m.SourceFilename)
	plan := pathtrack.Trace(g, target, p.opts.Strategy)
	for _, path := range plan.Paths {
		log.Debug().Ints("path", path).Msg("path discovered")
	}
	if plan.Empty() {
		rep.Report(outcome.NoPaths(), f.Name(), "")
		return unchanged(outcome.NoPaths()), false
	}

	ins := p.instrumenter(m, f, p.opts.Recorder)
	out, err := pathtrack.Apply(g, plan, ins)
	res := Result{
		Preserved: PreservedAll,
		Function:  f.Name(),
		Plan:      plan,
		Outcome:   out,
	}
	for _, b := range out.Instrumented {
		log.Debug().
			Str("block", g.BlockName(b)).
			Uint64("block_id", pathtrack.BlockID(g.Name, b)).
			Msg("block instrumented")
	}
	if out.Skipped > 0 {
		log.Warn().Int("skipped", out.Skipped).Msg("blocks without insertion point")
	}

	switch {
	case errors.Is(err, llvmir.ErrRecorderSignature):
		log.Warn().Err(err).Msg("coverage recorder conflict")
		rep.Report(outcome.RecorderConflict(), f.Name(), err.Error())
		res.Code = outcome.RecorderConflict()
		return res, false
	case err != nil:
		log.Warn().Err(err).Int("blocks", len(out.Instrumented)).Msg("instrumentation failed")
		rep.Report(outcome.InstrumentationFailed(), f.Name(), err.Error())
		res.Code = outcome.InstrumentationFailed()
		if !out.Changed() {
			return res, false
		}

		// Calls inserted before the failure stay in the module.
		res.Preserved = PreservedNone
		return res, true
	case !out.Changed():
		rep.Report(outcome.AlreadyInstrumented(), f.Name(), "")
		res.Code = outcome.AlreadyInstrumented()
		return res, false
	}

	res.Preserved = PreservedNone
	res.Code = outcome.Instrumented()
	rep.Report(res.Code, f.Name(), fmt.Sprintf("%d block(s) instrumented", len(out.Instrumented)))
	log.Info().
		Int("paths", len(plan.Paths)).
		Int("blocks", len(out.Instrumented)).
		Int("already_instrumented", out.AlreadyInstrumented).
		Msg("function instrumented")

	return res, true
}
