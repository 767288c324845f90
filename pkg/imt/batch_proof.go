package imt

import (
	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
)

// BatchInsertionProof is the transition proof emitted by InsertBatch/
// InsertBatchAt: the pre-batch predecessors proven against rootBefore, and
// every predecessor/new-leaf pair proven against rootAfter, in the order
// the batch applied them. EmptySubtreeRoot/EmptySubtreeSiblings carry the
// optional proof that the inserted range was empty before the batch; both
// are nil when the batch's shape doesn't admit that single-subtree proof
// (see emptySubtreeProof), in which case VerifyBatchInsertionProof skips it.
type BatchInsertionProof struct {
	RootBefore   field.Element
	RootAfter    field.Element
	InsertionIdx uint32

	EmptySubtreeRoot     field.Element
	EmptySubtreeSiblings []field.Element

	OgLeaves   []Proof // distinct pre-batch predecessors, proven against RootBefore
	PrevLeaves []Proof // every item's predecessor, proven against RootAfter, in batch order
	NewLeaves  []Proof // every item's new leaf, proven against RootAfter, in batch order
}

// VerifyBatchInsertionProof checks a batch-insertion transition without
// requiring the verifier to reconstruct the whole tree. It never errors;
// any malformed or inconsistent proof simply fails to verify.
func VerifyBatchInsertionProof(t *Tree, p BatchInsertionProof) bool {
	return verifyBatchInsertionProofWith(t.hash, p)
}

func verifyBatchInsertionProofWith(h hash.Pair, p BatchInsertionProof) bool {
	if len(p.PrevLeaves) == 0 || len(p.PrevLeaves) != len(p.NewLeaves) {
		return false
	}

	ogByIdx := make(map[uint32]Proof, len(p.OgLeaves))
	for _, og := range p.OgLeaves {
		if og.LeafIdx >= p.InsertionIdx {
			return false
		}
		if !field.Equal(og.Root, p.RootBefore) {
			return false
		}
		if !verifyProofWith(h, og) {
			return false
		}
		ogByIdx[og.LeafIdx] = og
	}

	for i := range p.PrevLeaves {
		prevP := p.PrevLeaves[i]
		newP := p.NewLeaves[i]

		if !field.Equal(prevP.Root, p.RootAfter) || !field.Equal(newP.Root, p.RootAfter) {
			return false
		}
		if !verifyProofWith(h, prevP) || !verifyProofWith(h, newP) {
			return false
		}

		// Each new leaf lands at the next free slot, in batch order.
		if newP.LeafIdx != p.InsertionIdx+uint32(i) {
			return false
		}
		// The predecessor's post-batch link points straight at the new leaf,
		// unless a later item spliced in after the same predecessor; that
		// later key lies between the two, so the link carries a smaller key.
		retargeted := false
		for _, later := range p.PrevLeaves[i+1:] {
			if later.LeafIdx == prevP.LeafIdx {
				retargeted = true
				break
			}
		}
		if retargeted {
			if prevP.Leaf.NextKey.Cmp(newP.Leaf.Key) >= 0 {
				return false
			}
		} else if newP.LeafIdx != prevP.Leaf.NextIdx || !field.Equal(newP.Leaf.Key, prevP.Leaf.NextKey) {
			return false
		}

		if prevP.LeafIdx < p.InsertionIdx {
			og, ok := ogByIdx[prevP.LeafIdx]
			if !ok {
				return false
			}
			if !field.Equal(og.Leaf.Key, prevP.Leaf.Key) || !field.Equal(og.Leaf.Value, prevP.Leaf.Value) {
				return false
			}
			// The successor key can only have tightened, unless the
			// predecessor was terminal before the batch.
			if !(prevP.Leaf.NextKey.Cmp(og.Leaf.NextKey) < 0 || field.IsZero(og.Leaf.NextKey)) {
				return false
			}
		}
	}

	if !field.Equal(p.NewLeaves[len(p.NewLeaves)-1].Root, p.RootAfter) {
		return false
	}

	if p.EmptySubtreeRoot != nil {
		m := len(p.NewLeaves)
		if m <= 0 || m&(m-1) != 0 || p.InsertionIdx%uint32(m) != 0 {
			return false
		}
		// The subtree must be the root of m zero leaves...
		empty := hash.ZeroLeaf(h)
		for s := 1; s < m; s <<= 1 {
			empty = h.H2(empty, empty)
		}
		if !field.Equal(p.EmptySubtreeRoot, empty) {
			return false
		}
		// ...sitting at the insertion slot under RootBefore.
		subtreeIdx := p.InsertionIdx / uint32(m)
		if !field.Equal(climb(h, p.EmptySubtreeRoot, subtreeIdx, p.EmptySubtreeSiblings, len(p.EmptySubtreeSiblings)), p.RootBefore) {
			return false
		}
	}

	return true
}
