package imt

import (
	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
)

// Node is one record in the tree: a (key, value) pair plus the successor
// link that threads the sorted singly-linked list.
type Node struct {
	Key     field.Element
	Value   field.Element
	NextIdx uint32
	NextKey field.Element
}

// terminal reports whether n has no successor.
func (n Node) terminal() bool {
	return n.NextIdx == 0 && field.IsZero(n.NextKey)
}

// hashNode computes H4(key, nextIdx, nextKey, value), the leaf encoding.
// nextIdx is widened to a field element losslessly.
func hashNode(h hash.Pair, n Node) field.Element {
	return h.H4(n.Key, field.FromUint32(n.NextIdx), n.NextKey, n.Value)
}
