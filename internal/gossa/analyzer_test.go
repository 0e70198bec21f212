package gossa

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
	"golang.org/x/tools/go/ssa"

	"github.com/sirkon/trackpaths/internal/pathtrack"
)

func TestAnalyzer(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		pkg  string
	}{
		{
			name: "diamond",
			cfg:  Config{File: "diamond.go", Line: 11, Strategy: pathtrack.StrategyPaths},
			pkg:  "diamond",
		},
		{
			name: "straight line",
			cfg:  Config{Line: 8, Strategy: pathtrack.StrategyPaths, Annotation: "track"},
			pkg:  "chain",
		},
		{
			name: "loop",
			cfg:  Config{File: "loop.go", Line: 9, Annotation: "hot"},
			pkg:  "loop",
		},
		{
			name: "annotation filter",
			cfg:  Config{Line: 6, Annotation: "track"},
			pkg:  "filtered",
		},
		{
			name: "file mismatch",
			cfg:  Config{File: "other.go", Line: 6},
			pkg:  "filtered",
		},
		{
			name: "line of unannotated function",
			cfg:  Config{Line: 13},
			pkg:  "filtered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysistest.Run(t, analysistest.TestData(), NewAnalyzer(tt.cfg), tt.pkg)
		})
	}
}

func TestAnalyzerResult(t *testing.T) {
	a := NewAnalyzer(Config{Line: 11, Strategy: pathtrack.StrategyPaths})
	results := analysistest.Run(t, analysistest.TestData(), a, "diamond")
	if len(results) != 1 {
		t.Fatalf("expected a single result, got %d", len(results))
	}

	plans := results[0].Result.(map[*ssa.Function]*pathtrack.Plan)
	if len(plans) != 1 {
		t.Fatalf("expected a single plan, got %d", len(plans))
	}
	for fn, plan := range plans {
		if fn.Name() != "pick" {
			t.Errorf("unexpected function %s", fn.Name())
		}
		if len(plan.Paths) != 2 || len(plan.Blocks) != 4 {
			t.Errorf("unexpected plan: %d paths, %d blocks", len(plan.Paths), len(plan.Blocks))
		}
		for _, path := range plan.Paths {
			if path[0] != 0 {
				t.Errorf("path %v does not start at the entry block", path)
			}
		}
	}
}
