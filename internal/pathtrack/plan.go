package pathtrack

// Plan describes what gets instrumented for a single target.
type Plan struct {
	Strategy Strategy
	Target   int

	// Paths discovered by [Enumerate]. Nil under [StrategyReachability].
	Paths []Path

	// Blocks to instrument, each once.
	Blocks []int
}

// Empty tells if there is nothing to instrument.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Blocks) == 0
}

// Trace collects the blocks on entry→target paths with the given strategy.
// An invalid strategy falls back to [StrategyPaths].
func Trace(g *Graph, target int, strategy Strategy) *Plan {
	plan := &Plan{
		Strategy: strategy,
		Target:   target,
	}

	switch strategy {
	case StrategyReachability:
		plan.Blocks = Reachable(g, target)
	default:
		plan.Strategy = StrategyPaths
		plan.Paths = Enumerate(g, target)
		plan.Blocks = Union(plan.Paths)
	}

	return plan
}
