package report

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/sirkon/trackpaths/internal/outcome"
)

func TestReporter_ReportPhases(t *testing.T) {
	tests := []struct {
		name     string
		phase    Phase
		code     outcome.Code
		function string
		message  string
		want     string
	}{
		{
			name:  "gate mismatch",
			phase: PhaseGate,
			code:  outcome.SourceMismatch(),
			want:  outcome.SourceMismatch().Description(),
		},
		{
			name:     "locate miss with custom message",
			phase:    PhaseLocate,
			code:     outcome.TargetNotFound(),
			function: "parse",
			message:  "line 12 not found",
			want:     "line 12 not found",
		},
		{
			name:     "track instrumented",
			phase:    PhaseTrack,
			code:     outcome.Instrumented(),
			function: "parse",
			message:  "4 blocks",
			want:     "4 blocks",
		},
	}

	r := New(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.Phase(tt.phase, "demo.c").Report(tt.code, tt.function, tt.message)
		})
	}

	reps := r.Reports()
	if len(reps) != len(tests) {
		t.Fatalf("expected %d reports, got %d", len(tests), len(reps))
	}

	for i, rep := range reps {
		want := tests[i]
		if rep.Phase != want.phase {
			t.Errorf("[%s] phase mismatch: got %v, want %v", want.name, rep.Phase, want.phase)
		}
		if rep.Code != want.code {
			t.Errorf("[%s] code mismatch: got %v, want %v", want.name, rep.Code, want.code)
		}
		if rep.Message != want.want {
			t.Errorf("[%s] message mismatch: got %q, want %q", want.name, rep.Message, want.want)
		}
		if rep.Module != "demo.c" || rep.Function != want.function {
			t.Errorf("[%s] location mismatch: got %s:%s", want.name, rep.Module, rep.Function)
		}
	}

	var buf bytes.Buffer
	r.PrintSummary(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(tests) {
		t.Fatalf("expected %d summary lines, got %q", len(tests), buf.String())
	}
	if !strings.HasPrefix(lines[0], "[gate] TP010: SourceMismatch") {
		t.Errorf("unexpected summary line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "(demo.c:parse)") {
		t.Errorf("unexpected summary line %q", lines[1])
	}
}

func TestReporter_ModuleTrace(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	for _, name := range []string{"a.c", "b.c", "a.c"} {
		if err := r.Module(name); err != nil {
			t.Fatal(err)
		}
	}

	if got := buf.String(); got != "a.c\nb.c\na.c\n" {
		t.Errorf("unexpected trace %q", got)
	}
	if len(r.Reports()) != 0 {
		t.Error("module trace must not produce reports")
	}
}

func TestReporter_ConcurrencySafety(t *testing.T) {
	const n = 500
	var (
		r  = New(nil)
		wg sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(Report{
				Phase:   PhaseTrack,
				Code:    outcome.Instrumented(),
				Message: "parallel add",
			})
		}()
	}
	wg.Wait()

	reps := r.Reports()
	if len(reps) != n {
		t.Fatalf("expected %d reports, got %d", n, len(reps))
	}
	reps[0].Message = "changed"
	reps2 := r.Reports()
	if reps2[0].Message == "changed" {
		t.Fatalf("Reports() returned shared slice, expected copy")
	}
}
