package llvmir

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/metadata"

	"github.com/sirkon/trackpaths/internal/pathtrack"
)

// Graph projects the control flow of a defined function into a graph.
// Block indices follow the declaration order, so the entry block is 0.
func Graph(f *ir.Func) *pathtrack.Graph {
	g := pathtrack.NewGraph(f.Name(), len(f.Blocks))

	index := make(map[*ir.Block]int, len(f.Blocks))
	for i, b := range f.Blocks {
		index[b] = i
	}

	for i, b := range f.Blocks {
		g.Blocks[i].Name = b.Name()

		lines := make([]int, 0, len(b.Insts)+1)
		for _, inst := range b.Insts {
			lines = append(lines, debugLine(inst))
		}
		if b.Term != nil {
			lines = append(lines, debugLine(b.Term))
		}
		g.Blocks[i].Lines = lines
	}

	for i, b := range f.Blocks {
		if b.Term == nil {
			continue
		}

		for _, succ := range b.Term.Succs() {
			j, ok := index[succ]
			if !ok {
				continue
			}

			g.AddEdge(i, j)
		}
	}

	return g
}

type attached interface {
	MDAttachments() []*metadata.Attachment
}

// debugLine returns the line of the !dbg location attached to the value,
// 0 if there is none.
func debugLine(v any) int {
	a, ok := v.(attached)
	if !ok {
		return 0
	}

	for _, md := range a.MDAttachments() {
		if strings.TrimPrefix(md.Name, "!") != "dbg" {
			continue
		}

		if loc, ok := md.Node.(*metadata.DILocation); ok {
			return int(loc.Line)
		}
	}

	return 0
}
