package imt

import (
	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
)

// InsertionProof is the transition proof emitted by Insert/InsertAt: the
// predecessor's membership proof before and after the update, and the new
// leaf's membership proof after the update.
type InsertionProof struct {
	OgBefore Proof // predecessor, proven against rootBefore
	OgAfter  Proof // predecessor, proven against rootAfter
	NewAfter Proof // new leaf, proven against rootAfter
}

// VerifyInsertionProof checks the five linking conditions of an insertion
// transition without requiring the verifier to reconstruct the whole tree.
// It returns false (never errors) on any malformed or invalid proof.
func VerifyInsertionProof(t *Tree, p InsertionProof) bool {
	return verifyInsertionProofWith(t.hash, p)
}

func verifyInsertionProofWith(h hash.Pair, p InsertionProof) bool {
	if !verifyProofWith(h, p.OgBefore) {
		return false
	}
	if !verifyProofWith(h, p.OgAfter) {
		return false
	}
	if !verifyProofWith(h, p.NewAfter) {
		return false
	}

	sb := p.OgBefore.Siblings
	so := p.OgAfter.Siblings
	sn := p.NewAfter.Siblings

	if len(so) != len(sn) {
		return false
	}
	if !(len(sb) == len(sn) || len(sb) == len(sn)-1) {
		return false
	}

	minLen := len(sb)
	if len(so) < minLen {
		minLen = len(so)
	}

	diff := -1
	for i := 0; i < minLen; i++ {
		if !field.Equal(sb[i], so[i]) {
			diff = i
			break
		}
	}
	if diff == -1 {
		if len(sb) == len(sn)-1 {
			// Common prefix matches in full; the extra level at the top is
			// where the tree grew, and that is where the transition happens.
			diff = minLen
		} else {
			return false
		}
	}

	// The new leaf's subtree of height diff must equal the sibling that
	// appears in the predecessor's post-update path at level diff.
	subtreeRoot := climb(h, hashNode(h, p.NewAfter.Leaf), p.NewAfter.LeafIdx, sn, diff)
	return field.Equal(subtreeRoot, so[diff])
}
