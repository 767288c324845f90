// Package insertion holds the in-circuit verifier for an indexed Merkle
// tree insertion transition: the predecessor leaf before the insert, the
// predecessor leaf after, and the new leaf after, linked the way
// Insert/InsertAt link them off-circuit.
package insertion

import (
	"github.com/consensys/gnark/frontend"

	"github.com/nullset-labs/imt/circuits/membership"
)

// Circuit proves an insertion transition without requiring the verifier
// to hold the tree itself (composes three membership.Circuit instances,
// mirroring how imt.InsertionProof bundles three imt.Proof values).
type Circuit struct {
	RootBefore frontend.Variable `gnark:",public"`
	RootAfter  frontend.Variable `gnark:",public"`
	NewKey     frontend.Variable `gnark:",public"`
	NewValue   frontend.Variable `gnark:",public"`

	OgBefore membership.Circuit
	OgAfter  membership.Circuit
	NewAfter membership.Circuit
}

// Define checks the three membership sub-proofs, then constrains how they
// link: their roots, the unchanged predecessor, the new leaf's key/value,
// the retargeted and inherited successor links, and key ordering.
func (c *Circuit) Define(api frontend.API) error {
	if err := c.OgBefore.Define(api); err != nil {
		return err
	}
	if err := c.OgAfter.Define(api); err != nil {
		return err
	}
	if err := c.NewAfter.Define(api); err != nil {
		return err
	}

	// Each sub-proof's own root must be the corresponding exposed root —
	// a malicious prover could otherwise submit an internally-consistent
	// membership proof against an unrelated root.
	api.AssertIsEqual(c.OgBefore.Root, c.RootBefore)
	api.AssertIsEqual(c.OgAfter.Root, c.RootAfter)
	api.AssertIsEqual(c.NewAfter.Root, c.RootAfter)

	// Same predecessor node, same index and value, before and after.
	api.AssertIsEqual(c.OgBefore.LeafIdx, c.OgAfter.LeafIdx)
	api.AssertIsEqual(c.OgBefore.Key, c.OgAfter.Key)
	api.AssertIsEqual(c.OgBefore.Value, c.OgAfter.Value)

	// The new leaf carries the key/value the caller is inserting.
	api.AssertIsEqual(c.NewAfter.Key, c.NewKey)
	api.AssertIsEqual(c.NewAfter.Value, c.NewValue)

	// The predecessor's successor link is retargeted at the new leaf...
	api.AssertIsEqual(c.OgAfter.NextIdx, c.NewAfter.LeafIdx)
	api.AssertIsEqual(c.OgAfter.NextKey, c.NewKey)

	// ...and the new leaf inherits whatever the predecessor pointed at before.
	api.AssertIsEqual(c.NewAfter.NextIdx, c.OgBefore.NextIdx)
	api.AssertIsEqual(c.NewAfter.NextKey, c.OgBefore.NextKey)

	// Ordering: predecessor.Key < newKey, and newKey < predecessor's old
	// NextKey unless the predecessor was terminal (NextKey == 0).
	api.AssertIsEqual(api.Cmp(c.OgBefore.Key, c.NewKey), -1)

	oldNextIsZero := api.IsZero(c.OgBefore.NextKey)
	newKeyBelowOldNext := api.IsZero(api.Add(api.Cmp(c.NewKey, c.OgBefore.NextKey), 1))
	api.AssertIsEqual(api.Or(oldNextIsZero, newKeyBelowOldNext), 1)

	return nil
}
