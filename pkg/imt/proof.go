package imt

import (
	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
)

// Proof is a membership proof: leaf, its index, the root it was proven
// against, and the sibling path connecting the two.
type Proof struct {
	LeafIdx  uint32
	Leaf     Node
	Root     field.Element
	Siblings []field.Element
}

// VerifyProof recomputes the leaf hash and walks the sibling path,
// accepting iff the recomputed root matches p.Root. It never errors —
// malformed proofs simply fail to verify.
func VerifyProof(t *Tree, p Proof) bool {
	return verifyProofWith(t.hash, p)
}

func verifyProofWith(h hash.Pair, p Proof) bool {
	cur := climb(h, hashNode(h, p.Leaf), p.LeafIdx, p.Siblings, len(p.Siblings))
	return field.Equal(cur, p.Root)
}

// climb hashes leaf up levels tree levels using siblings[0:levels], honoring
// idx's bit pattern for left/right ordering at each level. Shared by
// VerifyProof and the insertion-transition verifiers so the bit convention
// never drifts between them.
func climb(h hash.Pair, leaf field.Element, idx uint32, siblings []field.Element, levels int) field.Element {
	cur := leaf
	for i := 0; i < levels; i++ {
		if idx&1 == 0 {
			cur = h.H2(cur, siblings[i])
		} else {
			cur = h.H2(siblings[i], cur)
		}
		idx >>= 1
	}
	return cur
}

// Prove returns a membership proof for key, or ErrNotFound if absent.
func (t *Tree) Prove(key field.Element) (Proof, error) {
	idx := t.indexOfKey(key)
	if idx < 0 {
		return Proof{}, ErrNotFound
	}
	levels := merkleLevels(t.hash, t.leaves, t.zeroLeaf)
	return Proof{
		LeafIdx:  uint32(idx),
		Leaf:     t.nodes[idx],
		Root:     t.root,
		Siblings: siblingsForIndex(levels, idx),
	}, nil
}

// ProveExclusion proves that key is absent by returning a membership proof
// of its low-nullifier: the predecessor n with n.Key < key and
// (n.NextKey > key or n.NextKey == 0). Requires key >= 1; fails
// ErrKeyExists if key is present.
func (t *Tree) ProveExclusion(key field.Element) (Proof, error) {
	if key == nil || key.Sign() < 1 {
		return Proof{}, ErrInvalidKey
	}
	if t.indexOfKey(key) >= 0 {
		return Proof{}, ErrKeyExists
	}
	prevIdx, _ := t.findPrev(key)
	return t.Prove(t.nodes[prevIdx].Key)
}
