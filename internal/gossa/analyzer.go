// Package gossa runs path tracking over Go sources.
//
// Functions are marked for tracking with a directive in their doc comment:
//
//	//trackpaths:<annotation>
//	func parse(data []byte) error {
//
// For every marked function holding the target line the analyzer reports
// how the line is reached. Sources are never modified.
package gossa

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/buildssa"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/ssa"

	"github.com/sirkon/trackpaths/internal/annotations"
	"github.com/sirkon/trackpaths/internal/pathtrack"
)

const doc = `trackpaths reports the blocks leading to a target line of annotated functions

Functions are annotated with //trackpaths:<annotation> directives.`

// Directive prefixes annotation comments.
const Directive = "//trackpaths:"

// Config sets what is tracked.
type Config struct {
	// File keeps only functions declared in files with this name or path.
	// Any file when empty.
	File string

	// Line is the target line.
	Line int

	// Strategy defaults to [pathtrack.StrategyReachability].
	Strategy pathtrack.Strategy

	// Annotation keeps only functions annotated exactly so. Any when empty.
	Annotation string
}

// Analyzer tracks paths with the configuration given through its flags.
var Analyzer = NewAnalyzer(Config{})

// NewAnalyzer creates an analyzer with the given defaults. The analyzer
// flags override them.
func NewAnalyzer(cfg Config) *analysis.Analyzer {
	if !cfg.Strategy.Valid() {
		cfg.Strategy = pathtrack.StrategyReachability
	}

	c := &cfg
	a := &analysis.Analyzer{
		Name:       "trackpaths",
		Doc:        doc,
		Requires:   []*analysis.Analyzer{inspect.Analyzer, buildssa.Analyzer},
		Run:        c.run,
		ResultType: reflect.TypeOf(map[*ssa.Function]*pathtrack.Plan(nil)),
	}
	a.Flags.StringVar(&c.File, "file", c.File, "source file of tracked functions")
	a.Flags.IntVar(&c.Line, "line", c.Line, "target line")
	a.Flags.Var(&c.Strategy, "strategy", "block collection strategy (paths, reachability)")
	a.Flags.StringVar(&c.Annotation, "annotation", c.Annotation, "annotation of tracked functions")

	return a
}

func (c *Config) run(pass *analysis.Pass) (any, error) {
	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	info := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)

	funcs := map[string]*ssa.Function{}
	for _, fn := range info.SrcFuncs {
		if obj, ok := fn.Object().(*types.Func); ok {
			funcs[obj.FullName()] = fn
		}
	}

	var records []annotations.Record
	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
	}
	pector.Preorder(nodeFilter, func(node ast.Node) {
		decl := node.(*ast.FuncDecl)
		if decl.Body == nil || !c.fileMatches(pass.Fset.Position(decl.Pos())) {
			return
		}

		obj, ok := pass.TypesInfo.Defs[decl.Name].(*types.Func)
		if !ok {
			return
		}

		records = append(records, directives(pass.Fset, decl, obj.FullName())...)
	})

	res := map[*ssa.Function]*pathtrack.Plan{}
	for _, name := range annotations.Scan(records, c.Annotation) {
		fn, ok := funcs[name]
		if !ok {
			continue
		}

		plan := c.track(pass.Fset, fn)
		if plan.Empty() {
			continue
		}

		res[fn] = plan
		pass.Reportf(fn.Pos(), "%s", c.message(plan))
	}

	return res, nil
}

func (c *Config) fileMatches(pos token.Position) bool {
	if c.File == "" {
		return true
	}

	return pos.Filename == c.File || filepath.Base(pos.Filename) == filepath.Base(c.File)
}

func (c *Config) track(fset *token.FileSet, fn *ssa.Function) *pathtrack.Plan {
	g := Graph(fset, fn)
	target, ok := pathtrack.Locate(g, c.Line)
	if !ok {
		return nil
	}

	return pathtrack.Trace(g, target, c.Strategy)
}

func (c *Config) message(plan *pathtrack.Plan) string {
	if plan.Strategy == pathtrack.StrategyPaths {
		return fmt.Sprintf(
			"line %d is reached by %d path(s) through %d block(s)",
			c.Line,
			len(plan.Paths),
			len(plan.Blocks),
		)
	}

	return fmt.Sprintf("line %d is reached through %d block(s)", c.Line, len(plan.Blocks))
}

// directives turns //trackpaths: comments of a function declaration into
// annotation records.
func directives(fset *token.FileSet, decl *ast.FuncDecl, name string) []annotations.Record {
	if decl.Doc == nil {
		return nil
	}

	var res []annotations.Record
	for _, cmt := range decl.Doc.List {
		annotation, ok := strings.CutPrefix(cmt.Text, Directive)
		if !ok {
			continue
		}

		pos := fset.Position(cmt.Pos())
		res = append(res, annotations.Record{
			Function:   name,
			Annotation: strings.TrimSpace(annotation),
			File:       pos.Filename,
			Line:       pos.Line,
		})
	}

	return res
}
