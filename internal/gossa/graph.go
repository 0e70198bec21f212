package gossa

import (
	"go/token"

	"golang.org/x/tools/go/ssa"

	"github.com/sirkon/trackpaths/internal/pathtrack"
)

// Graph projects SSA blocks of the function into a graph. Block indices are
// the SSA block indices.
func Graph(fset *token.FileSet, fn *ssa.Function) *pathtrack.Graph {
	g := pathtrack.NewGraph(fn.Name(), len(fn.Blocks))

	for _, b := range fn.Blocks {
		blk := &g.Blocks[b.Index]
		blk.Name = b.Comment
		blk.Lines = make([]int, 0, len(b.Instrs))
		for _, instr := range b.Instrs {
			var line int
			if pos := instr.Pos(); pos.IsValid() {
				line = fset.Position(pos).Line
			}
			blk.Lines = append(blk.Lines, line)
		}
	}

	for _, b := range fn.Blocks {
		for _, succ := range b.Succs {
			g.AddEdge(b.Index, succ.Index)
		}
	}

	return g
}
