// Package pathtrack finds the basic blocks lying on execution paths from a
// function's entry to a target block and drives their instrumentation.
//
// The package works on a host-neutral projection of a function:
//
//   - Graph
//     An arena of blocks addressed by their index in the function's
//     declaration order. Every block keeps the debug line of each of its
//     instructions, and its predecessor and successor indices, one entry
//     per CFG edge.
//
//   - Locate
//     Picks the first block (declaration order) that holds an instruction
//     attributed to the requested source line.
//
//   - Enumerate / Reachable
//     Two ways to collect the blocks of interest. Enumerate walks predecessor
//     edges breadth-first from the target and materialises every path that
//     ends at the entry. It applies no visited-set, so a cycle standing
//     between the target and the entry makes it run forever. Reachable
//     computes the same block union as a reachability fixed point and always
//     terminates, at the price of not telling individual paths apart.
//
//   - Apply
//     Instruments the union of a Plan through a host Instrumenter, once per
//     block, declaring the coverage recorder first.
//
// Hosts (LLVM IR, Go SSA) build the Graph and implement Instrumenter; nothing
// in here knows about a concrete IR.
package pathtrack
