package pathtrack

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/sirkon/rbtree"
)

// ErrNoInsertionPoint is returned by an [Instrumenter] for blocks that
// cannot take a call, like exception dispatch blocks.
var ErrNoInsertionPoint = errors.New("block has no insertion point")

// Instrumenter modifies the host IR on behalf of [Apply].
type Instrumenter interface {
	// Declare makes the coverage recorder available in the module. It must
	// be idempotent and tells whether the declaration was added right now.
	Declare() (added bool, err error)

	// Instrumented tells if the block already calls the recorder, e.g. it
	// was instrumented by an earlier run.
	Instrumented(block int) bool

	// Instrument inserts a recorder call with the given id into the block.
	Instrument(block int, id uint64) error
}

// Outcome summarises an [Apply] run.
type Outcome struct {
	// Declared is set when the recorder declaration was added to the module.
	Declared bool

	// Instrumented lists blocks that received a call, in plan order.
	Instrumented []int

	// AlreadyInstrumented counts plan blocks that were calling the recorder
	// before the run.
	AlreadyInstrumented int

	// Skipped counts plan blocks without an insertion point.
	Skipped int
}

// Changed tells if the module was modified.
func (o Outcome) Changed() bool {
	return o.Declared || len(o.Instrumented) > 0
}

// Apply instruments every block of the plan exactly once. Nothing is touched,
// the recorder declaration included, when the plan is empty.
func Apply(g *Graph, plan *Plan, ins Instrumenter) (Outcome, error) {
	var res Outcome
	if plan.Empty() {
		return res, nil
	}

	declared, err := ins.Declare()
	if err != nil {
		return res, fmt.Errorf("declare coverage recorder: %w", err)
	}
	res.Declared = declared

	done := newInstrumentedSet()
	for _, b := range plan.Blocks {
		if !done.add(b) {
			continue
		}

		if ins.Instrumented(b) {
			res.AlreadyInstrumented++
			continue
		}

		if err := ins.Instrument(b, BlockID(g.Name, b)); err != nil {
			if errors.Is(err, ErrNoInsertionPoint) {
				res.Skipped++
				continue
			}

			return res, fmt.Errorf("instrument block %s: %w", g.BlockName(b), err)
		}
		res.Instrumented = append(res.Instrumented, b)
	}

	return res, nil
}

// instrumentedSet keeps blocks already handled during one Apply.
type instrumentedSet struct {
	tree *rbtree.Tree[*instrumentedBlock]
}

func newInstrumentedSet() *instrumentedSet {
	return &instrumentedSet{tree: rbtree.New[*instrumentedBlock]()}
}

// add marks the block and reports whether it was not marked before.
func (s *instrumentedSet) add(index int) bool {
	b := &instrumentedBlock{index: index}
	return s.tree.InsertReturn(b) == b
}

type instrumentedBlock struct {
	index int
}

// Cmp defines ordering for the RB-tree.
func (b *instrumentedBlock) Cmp(other *instrumentedBlock) int {
	return cmp.Compare(b.index, other.index)
}
