package trackpass

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/rs/zerolog"
	"github.com/sirkon/deepequal"

	"github.com/sirkon/trackpaths/internal/llvmir"
	"github.com/sirkon/trackpaths/internal/outcome"
	"github.com/sirkon/trackpaths/internal/pathtrack"
	"github.com/sirkon/trackpaths/internal/report"
)

func load(t *testing.T, name string) *ir.Module {
	t.Helper()

	m, err := llvmir.Load(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}

	return m
}

func text(t *testing.T, m *ir.Module) string {
	t.Helper()

	var buf bytes.Buffer
	if err := llvmir.Write(&buf, m); err != nil {
		t.Fatal(err)
	}

	return buf.String()
}

func recorderCalls(b *ir.Block) int {
	var n int
	for _, inst := range b.Insts {
		call, ok := inst.(*ir.InstCall)
		if !ok {
			continue
		}
		if f, ok := call.Callee.(*ir.Func); ok && f.Name() == llvmir.DefaultRecorder {
			n++
		}
	}

	return n
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		opts     Options
		code     outcome.Code
		function string
		blocks   []string
	}{
		{
			name:     "chain",
			file:     "chain.ll",
			opts:     Options{SourceFile: "demo.c", TargetLine: 13},
			code:     outcome.Instrumented(),
			function: "chain",
			blocks:   []string{"entry", "a", "b", "target"},
		},
		{
			name: "source mismatch",
			file: "chain.ll",
			opts: Options{SourceFile: "other.c", TargetLine: 13},
			code: outcome.SourceMismatch(),
		},
		{
			name: "line of unannotated function",
			file: "chain.ll",
			opts: Options{SourceFile: "demo.c", TargetLine: 20},
			code: outcome.TargetNotFound(),
		},
		{
			name: "annotation filter",
			file: "chain.ll",
			opts: Options{SourceFile: "demo.c", TargetLine: 13, Annotation: "hot"},
			code: outcome.NoAnnotations(),
		},
		{
			name: "disconnected target",
			file: "island.ll",
			opts: Options{SourceFile: "demo.c", TargetLine: 11},
			code: outcome.NoPaths(),
		},
		{
			name:     "shared block",
			file:     "fanout.ll",
			opts:     Options{SourceFile: "demo.c", TargetLine: 17},
			code:     outcome.Instrumented(),
			function: "fanout",
			blocks:   []string{"entry", "c1", "shared", "target", "c2", "c3", "c4", "c5"},
		},
		{
			name: "loop with reachability",
			file: "loop.ll",
			opts: Options{
				SourceFile: "demo.c",
				TargetLine: 13,
				Strategy:   pathtrack.StrategyReachability,
				Annotation: "hot",
			},
			code:     outcome.Instrumented(),
			function: "loop",
			blocks:   []string{"entry", "head", "body", "exit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trace bytes.Buffer
			m := load(t, tt.file)
			before := text(t, m)
			funcs := len(m.Funcs)

			res := New(tt.opts, &trace, zerolog.Nop()).Run(m)
			if res.Code != tt.code {
				t.Fatalf("unexpected outcome %s, want %s", res.Code, tt.code)
			}
			if trace.String() != "demo.c\n" {
				t.Errorf("unexpected module trace %q", trace.String())
			}

			if !tt.code.Changed() {
				if res.Changed() {
					t.Error("result must keep all analyses")
				}
				if len(m.Funcs) != funcs {
					t.Error("recorder must not be declared into unchanged module")
				}
				if after := text(t, m); after != before {
					deepequal.SideBySide(t, "module", before, after)
					t.Error("unchanged module was modified")
				}
				return
			}

			if !res.Changed() || res.Function != tt.function {
				t.Fatalf("unexpected result %v for %s", res.Preserved, res.Function)
			}

			f := llvmir.Func(m, tt.function)
			var got []string
			for _, b := range res.Outcome.Instrumented {
				got = append(got, f.Blocks[b].Name())
			}
			if !reflect.DeepEqual(tt.blocks, got) {
				deepequal.SideBySide(t, "instrumented", tt.blocks, got)
				t.FailNow()
			}

			for _, b := range f.Blocks {
				if n := recorderCalls(b); n != 1 {
					t.Errorf("block %s got %d recorder calls", b.Name(), n)
				}
			}
			if n := strings.Count(text(t, m), "declare void @"+llvmir.DefaultRecorder); n != 1 {
				t.Errorf("recorder declared %d times", n)
			}
		})
	}
}

func TestRunTwice(t *testing.T) {
	m := load(t, "chain.ll")
	p := New(Options{SourceFile: "demo.c", TargetLine: 13}, nil, zerolog.Nop())

	if res := p.Run(m); res.Code != outcome.Instrumented() {
		t.Fatalf("first run: unexpected outcome %s", res.Code)
	}
	res := p.Run(m)
	if res.Code != outcome.AlreadyInstrumented() || res.Changed() {
		t.Fatalf("second run: unexpected outcome %s", res.Code)
	}
	if res.Outcome.AlreadyInstrumented != 4 {
		t.Errorf("expected 4 already instrumented blocks, got %d", res.Outcome.AlreadyInstrumented)
	}

	var phases []report.Phase
	for _, rep := range p.Reporter().Reports() {
		phases = append(phases, rep.Phase)
	}
	if !reflect.DeepEqual([]report.Phase{report.PhaseTrack, report.PhaseTrack}, phases) {
		deepequal.SideBySide(t, "phases", []report.Phase{report.PhaseTrack, report.PhaseTrack}, phases)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(path, []byte("stale\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Open(Options{SourceFile: "demo.c", TargetLine: 11}, path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	p.Run(load(t, "island.ll"))
	p.Run(load(t, "chain.ll"))
	p.Close()
	p.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "demo.c\ndemo.c\n" {
		t.Errorf("unexpected report %q", string(data))
	}
}

var errInsert = errors.New("insertion failed")

// failingInstrumenter delegates to the real instrumenter and fails the call
// after the given number of successful insertions.
type failingInstrumenter struct {
	pathtrack.Instrumenter
	declare bool
	left    int
}

func (f *failingInstrumenter) Declare() (bool, error) {
	if !f.declare {
		return false, nil
	}

	return f.Instrumenter.Declare()
}

func (f *failingInstrumenter) Instrument(block int, id uint64) error {
	if f.left == 0 {
		return errInsert
	}
	f.left--

	return f.Instrumenter.Instrument(block, id)
}

func TestRunInstrumentationFailed(t *testing.T) {
	tests := []struct {
		name    string
		declare bool
		left    int
		changed bool
		blocks  []string
	}{
		{
			name: "nothing inserted",
		},
		{
			name:    "partially instrumented",
			declare: true,
			left:    2,
			changed: true,
			blocks:  []string{"entry", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := load(t, "chain.ll")
			before := text(t, m)

			p := New(Options{SourceFile: "demo.c", TargetLine: 13}, nil, zerolog.Nop())
			p.instrumenter = func(m *ir.Module, f *ir.Func, recorder string) pathtrack.Instrumenter {
				return &failingInstrumenter{
					Instrumenter: llvmir.NewInstrumenter(m, f, recorder),
					declare:      tt.declare,
					left:         tt.left,
				}
			}

			res := p.Run(m)
			if res.Code != outcome.InstrumentationFailed() {
				t.Fatalf("unexpected outcome %s", res.Code)
			}
			if res.Changed() != tt.changed {
				t.Errorf("unexpected preserved analyses %s", res.Preserved)
			}

			f := llvmir.Func(m, "chain")
			var got []string
			for _, b := range res.Outcome.Instrumented {
				got = append(got, f.Blocks[b].Name())
			}
			if !reflect.DeepEqual(tt.blocks, got) {
				deepequal.SideBySide(t, "instrumented", tt.blocks, got)
			}
			if !tt.changed {
				if after := text(t, m); after != before {
					deepequal.SideBySide(t, "module", before, after)
					t.Error("unchanged module was modified")
				}
			}

			reps := p.Reporter().Reports()
			if len(reps) != 1 {
				t.Fatalf("expected a single report, got %d", len(reps))
			}
			rep := reps[0]
			if rep.Phase != report.PhaseTrack || rep.Code != outcome.InstrumentationFailed() || rep.Function != "chain" {
				t.Errorf("unexpected report %s %s %q", rep.Phase, rep.Code, rep.Function)
			}
			if !strings.Contains(rep.Message, errInsert.Error()) {
				t.Errorf("report message %q must carry the failure", rep.Message)
			}
		})
	}
}
