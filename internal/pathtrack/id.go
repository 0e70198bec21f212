package pathtrack

import (
	"github.com/zeebo/xxh3"
)

// BlockID returns the identifier a block reports to the coverage recorder.
//
// The upper half carries 31 bits of the function name hash, the lower half
// the block index. Identifiers stay the same across compilations as long as
// the function keeps its name and block layout, and they always fit a
// non-negative i64.
func BlockID(function string, index int) uint64 {
	return (xxh3.HashString(function)&0x7fffffff)<<32 | uint64(uint32(index))
}
