// Package hash injects the two field hashes the indexed Merkle tree needs:
// a 2-to-1 hash for Merkle-path combination and a 4-to-1 hash for leaf
// encoding. The reference instantiation drives gnark-crypto's Poseidon2
// permutation over BN254 through a Merkle-Damgard construction for
// multi-element hashing; H2 and H4 carry no domain tag.
package hash

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/nullset-labs/imt/pkg/field"
)

// Pair is the small capability object the tree is configured with: a
// 2-to-1 hash for sibling combination and a 4-to-1 hash for leaf encoding.
// Implementers may swap the permutation but must keep H4's input ordering
// (key, nextIdx, nextKey, value) fixed.
type Pair interface {
	H2(a, b field.Element) field.Element
	H4(a, b, c, d field.Element) field.Element
}

// Poseidon2Pair is the reference {H2,H4} pair: Poseidon2 over BN254 via a
// Merkle-Damgard sponge, one instance per call so concurrent callers never
// share hasher state.
type Poseidon2Pair struct{}

var _ Pair = Poseidon2Pair{}

// H2 hashes two field elements: H2(a,b) = Poseidon2MD(a || b).
func (Poseidon2Pair) H2(a, b field.Element) field.Element {
	h := poseidon2.NewMerkleDamgardHasher()
	writeElement(h, a)
	writeElement(h, b)
	return sumToField(h)
}

// H4 hashes four field elements in a fixed order: key, nextIdx, nextKey,
// value.
func (Poseidon2Pair) H4(a, b, c, d field.Element) field.Element {
	h := poseidon2.NewMerkleDamgardHasher()
	writeElement(h, a)
	writeElement(h, b)
	writeElement(h, c)
	writeElement(h, d)
	return sumToField(h)
}

type writer interface {
	Write(p []byte) (int, error)
}

// writeElement feeds x's canonical 32-byte encoding to h. Using the
// canonical fr.Element encoding (rather than big.Int.Bytes(), which
// shrinks to fewer bytes for small/zero values) keeps a zero input
// distinguishable in length from "no input".
func writeElement(w writer, x field.Element) {
	b := field.ToCanonicalBytes(x)
	_, _ = w.Write(b[:])
}

type summer interface {
	Sum(b []byte) []byte
}

func sumToField(h summer) field.Element {
	sum := h.Sum(nil)
	var b [32]byte
	copy(b[32-len(sum):], sum)
	return field.FromCanonicalBytes(b)
}

// ZeroLeaf computes H4(0,0,0,0), the canonical placeholder hash for unused
// leaf slots. It is recomputed (not cached globally) so that a tree
// configured with a non-default Pair gets its own zero leaf.
func ZeroLeaf(h Pair) field.Element {
	z := field.Zero()
	return h.H4(z, z, z, z)
}
