// Package imt implements an append-only Indexed Merkle Tree: a sparse
// Merkle commitment to a set of (key, value) records whose leaves also
// form a sorted singly-linked list by key, enabling membership,
// non-membership and insertion-transition proofs (the "low-nullifier"
// pattern).
package imt

import (
	"math/big"

	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
)

// Tree holds the record array, the derived leaf hashes and the cached
// root. Zero value is not usable; construct with New.
type Tree struct {
	depth            uint8
	hash             hash.Pair
	failOnTruncation bool
	zeroLeaf         field.Element
	initialized      bool

	nodes  []Node
	leaves []field.Element
	root   field.Element
}

// New constructs an uninitialized tree configured with the given hash pair.
// Call Init before any mutator. failOnTruncation, when true (the
// recommended default), makes insert/insertAt/insertBatch reject
// out-of-range keys/values immediately rather than silently reducing them.
func New(h hash.Pair, failOnTruncation bool) *Tree {
	return &Tree{hash: h, failOnTruncation: failOnTruncation, zeroLeaf: hash.ZeroLeaf(h)}
}

// Init installs the sentinel record at index 0 and fixes the tree's depth.
// depth must be in [1,254]; Init may only be called once per Tree.
func (t *Tree) Init(depth uint8) error {
	if t.initialized {
		return ErrAlreadyInit
	}
	if depth < 1 || depth > 254 {
		return ErrBadDepth
	}

	t.depth = depth
	t.nodes = []Node{{Key: field.Zero(), Value: field.Zero(), NextIdx: 0, NextKey: field.Zero()}}
	t.leaves = []field.Element{t.zeroLeaf}
	t.root = t.zeroLeaf
	t.initialized = true
	return nil
}

// Root returns the tree's current Merkle root.
func (t *Tree) Root() field.Element {
	return t.root
}

// Depth returns the tree's fixed depth.
func (t *Tree) Depth() uint8 {
	return t.depth
}

// NumOfLeaves returns the number of records, including the sentinel.
func (t *Tree) NumOfLeaves() int {
	return len(t.nodes)
}

// maxLeaves returns 2^depth as a big.Int, since depth may approach 254.
func (t *Tree) maxLeaves() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(t.depth))
}

func (t *Tree) validateKey(key field.Element) error {
	if key == nil || key.Sign() <= 0 {
		return ErrInvalidKey
	}
	if t.failOnTruncation && key.Cmp(field.Modulus()) > 0 {
		return ErrInvalidKey
	}
	return nil
}

func (t *Tree) validateValue(value field.Element) error {
	if value == nil || value.Sign() < 0 {
		return ErrInvalidValue
	}
	if t.failOnTruncation && value.Cmp(field.Modulus()) > 0 {
		return ErrInvalidValue
	}
	return nil
}

// indexOfKey returns the node index whose Key equals key, or -1.
func (t *Tree) indexOfKey(key field.Element) int {
	for i, n := range t.nodes {
		if field.Equal(n.Key, key) {
			return i
		}
	}
	return -1
}

// findPrev returns the index and key of the greatest existing key strictly
// less than key. For an empty tree (only the sentinel) it
// returns the sentinel, (0, 0).
func (t *Tree) findPrev(key field.Element) (prevIdx uint32, prevKey field.Element) {
	prevIdx = 0
	prevKey = field.Zero()

	one := big.NewInt(1)
	for i := 1; i < len(t.nodes); i++ {
		k := t.nodes[i].Key
		if k.Cmp(key) < 0 {
			if k.Cmp(prevKey) > 0 {
				prevIdx = uint32(i)
				prevKey = k
			}
			if new(big.Int).Add(k, one).Cmp(key) == 0 {
				// No closer predecessor can exist than one immediately below key.
				break
			}
		}
	}
	return prevIdx, prevKey
}

// recomputeLeaf refreshes leaves[idx] from nodes[idx].
func (t *Tree) recomputeLeaf(idx uint32) {
	t.leaves[idx] = hashNode(t.hash, t.nodes[idx])
}

// recomputeRoot refreshes the cached root from the current leaves.
func (t *Tree) recomputeRoot() {
	t.root = merkleRoot(t.hash, t.leaves, t.zeroLeaf)
}

// Insert adds (key, value) to the tree and returns a proof of the
// insertion transition. The tree is left unchanged if an error is
// returned.
func (t *Tree) Insert(key, value field.Element) (InsertionProof, error) {
	if !t.initialized {
		return InsertionProof{}, ErrNotInit
	}
	if err := t.validateKey(key); err != nil {
		return InsertionProof{}, err
	}
	if err := t.validateValue(value); err != nil {
		return InsertionProof{}, err
	}
	if t.indexOfKey(key) >= 0 {
		return InsertionProof{}, ErrDuplicateKey
	}
	if big.NewInt(int64(len(t.nodes))).Cmp(t.maxLeaves()) >= 0 {
		return InsertionProof{}, ErrFull
	}

	prevIdx, _ := t.findPrev(key)
	return t.insertAt(uint32(prevIdx), key, value)
}

// InsertAt behaves like Insert but takes the caller-supplied predecessor
// index, for callers (e.g. circuits) that already hold a witness for it.
// The witness is checked, not trusted.
func (t *Tree) InsertAt(prevIdx uint32, key, value field.Element) (InsertionProof, error) {
	if !t.initialized {
		return InsertionProof{}, ErrNotInit
	}
	if err := t.validateKey(key); err != nil {
		return InsertionProof{}, err
	}
	if err := t.validateValue(value); err != nil {
		return InsertionProof{}, err
	}
	if t.indexOfKey(key) >= 0 {
		return InsertionProof{}, ErrDuplicateKey
	}
	if big.NewInt(int64(len(t.nodes))).Cmp(t.maxLeaves()) >= 0 {
		return InsertionProof{}, ErrFull
	}
	if err := t.checkPrev(prevIdx, key); err != nil {
		return InsertionProof{}, err
	}
	return t.insertAt(prevIdx, key, value)
}

// checkPrev validates a caller-supplied predecessor witness against the
// current state.
func (t *Tree) checkPrev(prevIdx uint32, key field.Element) error {
	if int(prevIdx) >= len(t.nodes) {
		return ErrBadPrev
	}
	prev := t.nodes[prevIdx]
	if prev.Key.Cmp(key) >= 0 {
		return ErrBadPrev
	}
	if !(prev.NextKey.Cmp(key) > 0 || field.IsZero(prev.NextKey)) {
		return ErrBadPrev
	}
	return nil
}

// rawInsert performs the bare linked-list splice and leaf-hash refresh
// shared by insertAt and batch insertion, without touching t.root or
// building any proof. Callers are responsible for calling recomputeRoot
// once all of a batch's splices are done.
func (t *Tree) rawInsert(prevIdx uint32, key, value field.Element) (newIdx uint32) {
	prev := t.nodes[prevIdx]
	newIdx = uint32(len(t.nodes))
	newNode := Node{Key: key, Value: value, NextIdx: prev.NextIdx, NextKey: prev.NextKey}

	t.nodes = append(t.nodes, newNode)
	t.nodes[prevIdx].NextIdx = newIdx
	t.nodes[prevIdx].NextKey = key

	t.leaves = append(t.leaves, field.Zero())
	t.recomputeLeaf(prevIdx)
	t.recomputeLeaf(newIdx)
	return newIdx
}

// insertAt performs the unchecked mutation shared by Insert/InsertAt, and
// builds the single insertion-transition proof. Batch insertion bypasses
// this and calls rawInsert directly, since it builds its own transition
// proof once the whole batch has landed.
func (t *Tree) insertAt(prevIdx uint32, key, value field.Element) (InsertionProof, error) {
	rootBefore := t.root
	levelsBefore := merkleLevels(t.hash, t.leaves, t.zeroLeaf)
	ogBefore := Proof{
		LeafIdx:  prevIdx,
		Leaf:     t.nodes[prevIdx],
		Root:     rootBefore,
		Siblings: siblingsForIndex(levelsBefore, int(prevIdx)),
	}

	newIdx := t.rawInsert(prevIdx, key, value)
	t.recomputeRoot()

	levelsAfter := merkleLevels(t.hash, t.leaves, t.zeroLeaf)
	ogAfter := Proof{
		LeafIdx:  prevIdx,
		Leaf:     t.nodes[prevIdx],
		Root:     t.root,
		Siblings: siblingsForIndex(levelsAfter, int(prevIdx)),
	}
	newAfter := Proof{
		LeafIdx:  newIdx,
		Leaf:     t.nodes[newIdx],
		Root:     t.root,
		Siblings: siblingsForIndex(levelsAfter, int(newIdx)),
	}

	return InsertionProof{OgBefore: ogBefore, OgAfter: ogAfter, NewAfter: newAfter}, nil
}
