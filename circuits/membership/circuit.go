// Package membership holds the in-circuit verifier for an indexed Merkle
// tree membership proof: a leaf's four-element encoding, climbed up a
// fixed-depth sibling path to an expected root.
package membership

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"

	"github.com/nullset-labs/imt/config"
)

// Circuit proves that H4(Key, NextIdx, NextKey, Value), climbed along
// Siblings using the bits of LeafIdx for left/right ordering, reproduces
// Root. Sibling entries at or beyond the tree's real depth are 0, and
// Define leaves the running hash unchanged at every level whose sibling is
// 0. Off-circuit proofs (Prove/VerifyProof) carry a shorter sibling list
// with no padding; it is zero-padded to this fixed size for the witness.
type Circuit struct {
	Root    frontend.Variable `gnark:",public"`
	LeafIdx frontend.Variable `gnark:",public"`

	Key     frontend.Variable
	Value   frontend.Variable
	NextIdx frontend.Variable
	NextKey frontend.Variable

	Siblings [config.MaxTreeDepth]frontend.Variable
}

// Define implements the membership check. It is also called as a
// sub-circuit by circuits/insertion, which is why leaf computation and
// root climbing are left as a single pass with no early return.
func (c *Circuit) Define(api frontend.API) error {
	_, err := c.verify(api)
	return err
}

// verify runs the membership check and additionally returns the computed
// leaf hash; Define discards it.
func (c *Circuit) verify(api frontend.API) (frontend.Variable, error) {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return nil, err
	}
	hasher := hash.NewMerkleDamgardHasher(api, p, 0)

	hasher.Write(c.Key, c.NextIdx, c.NextKey, c.Value)
	leaf := hasher.Sum()
	hasher.Reset()

	idxBits := api.ToBinary(c.LeafIdx, config.MaxTreeDepth)

	cur := leaf
	for i := 0; i < config.MaxTreeDepth; i++ {
		sibling := c.Siblings[i]
		siblingIsZero := api.IsZero(sibling)
		dir := idxBits[i]

		hasher.Reset()
		left := api.Select(dir, sibling, cur)
		right := api.Select(dir, cur, sibling)
		hasher.Write(left, right)
		climbed := hasher.Sum()

		cur = api.Select(siblingIsZero, cur, climbed)
	}

	api.AssertIsEqual(cur, c.Root)
	return leaf, nil
}
