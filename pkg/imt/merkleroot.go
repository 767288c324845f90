package imt

import (
	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
)

// nextPowerOfTwo returns 2^ceil(log2(max(n,1))), with a floor of 1 so that
// a tree holding zero or one leaf never needs a hashing pass.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// merkleLevels pads leaves up to the next power of two with zeroLeaf and
// hashes level by level until a single root remains. levels[0] is the
// padded leaf row; levels[len(levels)-1] has exactly one element, the root.
// This is the one place the tree's canonical rooting rule lives, reused by
// both root recomputation and proof generation so the two can never drift.
func merkleLevels(h hash.Pair, leaves []field.Element, zeroLeaf field.Element) [][]field.Element {
	size := nextPowerOfTwo(len(leaves))

	level0 := make([]field.Element, size)
	copy(level0, leaves)
	for i := len(leaves); i < size; i++ {
		level0[i] = zeroLeaf
	}

	levels := [][]field.Element{level0}
	cur := level0
	for len(cur) > 1 {
		next := make([]field.Element, len(cur)/2)
		for i := range next {
			next[i] = h.H2(cur[2*i], cur[2*i+1])
		}
		levels = append(levels, next)
		cur = next
	}
	return levels
}

// merkleRoot computes the canonical root over leaves, padded to the next
// power of two with zeroLeaf.
func merkleRoot(h hash.Pair, leaves []field.Element, zeroLeaf field.Element) field.Element {
	levels := merkleLevels(h, leaves, zeroLeaf)
	return levels[len(levels)-1][0]
}

// siblingsForIndex walks levels bottom-up from idx, collecting the sibling
// at each level before moving to the parent. It is shared by membership
// proof generation and insertion-transition proof generation so their
// sibling counts and ordering are always consistent with merkleRoot.
func siblingsForIndex(levels [][]field.Element, idx int) []field.Element {
	siblings := make([]field.Element, 0, len(levels)-1)
	for lvl := 0; lvl < len(levels)-1; lvl++ {
		sibIdx := idx ^ 1
		siblings = append(siblings, levels[lvl][sibIdx])
		idx >>= 1
	}
	return siblings
}
