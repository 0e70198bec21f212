package pathtrack

import (
	"slices"

	"golang.org/x/tools/container/intsets"
)

// Path is a sequence of block indices running from the entry to the target.
type Path []int

// Enumerate returns every path from g.Entry to target, in discovery order.
//
// The search runs backward over predecessor edges with a FIFO queue of
// partial paths seeded with [target]. A partial path whose last block is the
// entry is complete and gets reversed. Otherwise it is extended once per
// predecessor, in predecessor order. There is no visited-set: when a cycle is
// reachable backward from target before the entry is met, the queue never
// drains. Use [Reachable] for such graphs.
func Enumerate(g *Graph, target int) []Path {
	var paths []Path

	queue := []Path{{target}}
	for len(queue) > 0 {
		path := queue[0]
		queue[0] = nil
		queue = queue[1:]

		last := path[len(path)-1]
		if last == g.Entry {
			slices.Reverse(path)
			paths = append(paths, path)
			continue
		}

		for _, pred := range g.Blocks[last].Preds {
			next := make(Path, len(path), len(path)+1)
			copy(next, path)
			queue = append(queue, append(next, pred))
		}
	}

	return paths
}

// Union returns the blocks of all paths, each once, in order of their first
// appearance.
func Union(paths []Path) []int {
	var (
		seen intsets.Sparse
		res  []int
	)
	for _, path := range paths {
		for _, b := range path {
			if seen.Insert(b) {
				res = append(res, b)
			}
		}
	}

	return res
}

// Reachable returns, in ascending order, the blocks lying on at least one
// walk from g.Entry to target. A walk ends at the first time it meets the
// entry, exactly like the paths of [Enumerate], so for acyclic graphs the
// result is the same set [Union] gives for the enumerated paths.
//
// Blocks are collected as the intersection of two sets: blocks reachable
// backward from target without stepping past the entry, and blocks
// reachable forward from the entry. Both are linear in the graph size.
func Reachable(g *Graph, target int) []int {
	var back intsets.Sparse
	back.Insert(target)
	work := []int{target}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if b == g.Entry {
			continue
		}

		for _, pred := range g.Blocks[b].Preds {
			if back.Insert(pred) {
				work = append(work, pred)
			}
		}
	}

	if !back.Has(g.Entry) {
		return nil
	}

	// Forward search stays inside the backward set: every block between
	// the entry and a member of the set is a member itself.
	var on intsets.Sparse
	on.Insert(g.Entry)
	work = append(work[:0], g.Entry)
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]

		for _, succ := range g.Blocks[b].Succs {
			if back.Has(succ) && on.Insert(succ) {
				work = append(work, succ)
			}
		}
	}

	return on.AppendTo(nil)
}
