package pathtrack

import (
	"slices"
	"strconv"
)

// Graph is an index-addressed control-flow graph of a single function.
type Graph struct {
	// Name is the name of the function the graph was built from.
	Name string

	// Entry is the index of the entry block.
	Entry int

	// Blocks in the function's declaration order.
	Blocks []Block
}

// Block is a basic block projected from a host IR.
type Block struct {
	Name string

	// Lines holds the debug line of every instruction in order, terminator
	// last. Zero stands for an instruction without a location.
	Lines []int

	// Preds and Succs keep one entry per CFG edge, duplicates included.
	Preds []int
	Succs []int
}

// NewGraph is [Graph] constructor. It creates n unconnected blocks with the
// entry at index 0.
func NewGraph(name string, n int) *Graph {
	return &Graph{
		Name:   name,
		Blocks: make([]Block, n),
	}
}

// AddEdge records a control transfer from one block into another.
func (g *Graph) AddEdge(from, to int) {
	g.Blocks[from].Succs = append(g.Blocks[from].Succs, to)
	g.Blocks[to].Preds = append(g.Blocks[to].Preds, from)
}

// Len returns the number of blocks.
func (g *Graph) Len() int {
	return len(g.Blocks)
}

// BlockName returns a printable name of the block at index i.
func (g *Graph) BlockName(i int) string {
	if i < 0 || i >= len(g.Blocks) {
		return "<none>"
	}
	if name := g.Blocks[i].Name; name != "" {
		return name
	}

	return "#" + strconv.Itoa(i)
}

// Locate returns the first block in declaration order holding an instruction
// attributed to the given source line. Non-positive lines never match.
func Locate(g *Graph, line int) (int, bool) {
	if line <= 0 {
		return -1, false
	}

	for i := range g.Blocks {
		if slices.Contains(g.Blocks[i].Lines, line) {
			return i, true
		}
	}

	return -1, false
}
