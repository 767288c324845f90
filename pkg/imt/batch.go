package imt

import (
	"math/big"
	"math/bits"

	"github.com/nullset-labs/imt/pkg/field"
)

// Item is one (key, value) pair submitted to a batch insertion.
type Item struct {
	Key   field.Element
	Value field.Element
}

// pendingInsert records the splice point and resulting index for one item
// of an in-flight batch, so the batch-insertion proof can be assembled once
// every item has landed.
type pendingInsert struct {
	prevIdx uint32
	newIdx  uint32
}

// InsertBatch inserts items as one atomic unit: predecessors are found
// against the tree as extended by earlier items in
// the same batch, so later items may thread off nodes the batch itself just
// added. If any item fails validation the tree is left exactly as it was
// before the call; no partial batch is ever committed.
func (t *Tree) InsertBatch(items []Item) (BatchInsertionProof, error) {
	if !t.initialized {
		return BatchInsertionProof{}, ErrNotInit
	}
	if len(items) == 0 {
		return BatchInsertionProof{}, ErrEmptyBatch
	}

	snapshot := t.snapshot()
	insertionIdx := uint32(len(t.nodes))
	rootBefore := t.root

	pendings := make([]pendingInsert, 0, len(items))
	for _, it := range items {
		if err := t.validateKey(it.Key); err != nil {
			t.restore(snapshot)
			return BatchInsertionProof{}, err
		}
		if err := t.validateValue(it.Value); err != nil {
			t.restore(snapshot)
			return BatchInsertionProof{}, err
		}
		if t.indexOfKey(it.Key) >= 0 {
			t.restore(snapshot)
			return BatchInsertionProof{}, ErrDuplicateKey
		}
		if big.NewInt(int64(len(t.nodes))).Cmp(t.maxLeaves()) >= 0 {
			t.restore(snapshot)
			return BatchInsertionProof{}, ErrFull
		}

		prevIdx, _ := t.findPrev(it.Key)
		newIdx := t.rawInsert(prevIdx, it.Key, it.Value)
		pendings = append(pendings, pendingInsert{prevIdx: prevIdx, newIdx: newIdx})
	}
	t.recomputeRoot()

	return t.buildBatchProof(snapshot, insertionIdx, rootBefore, pendings), nil
}

// InsertBatchAt behaves like InsertBatch but takes an explicit prevIdxs
// witness per item, for callers (e.g. an on-chain verifier) that already
// computed predecessors off-chain. prevIdxs[i] < the pre-batch
// leaf count names an existing node; a value >= that count names another
// item's new leaf earlier in this same batch (by its final index). Every
// witness is checked, not trusted, and existing-node prevIdxs must be
// non-decreasing across the batch — this implementation enforces that
// ordering discipline rather than merely recommending it.
func (t *Tree) InsertBatchAt(items []Item, prevIdxs []uint32) (BatchInsertionProof, error) {
	if !t.initialized {
		return BatchInsertionProof{}, ErrNotInit
	}
	if len(items) == 0 {
		return BatchInsertionProof{}, ErrEmptyBatch
	}
	if len(items) != len(prevIdxs) {
		return BatchInsertionProof{}, ErrBatchShape
	}

	snapshot := t.snapshot()
	insertionIdx := uint32(len(t.nodes))
	rootBefore := t.root

	pendings := make([]pendingInsert, 0, len(items))
	lastExistingPrev := int64(-1)
	for i, it := range items {
		if err := t.validateKey(it.Key); err != nil {
			t.restore(snapshot)
			return BatchInsertionProof{}, err
		}
		if err := t.validateValue(it.Value); err != nil {
			t.restore(snapshot)
			return BatchInsertionProof{}, err
		}
		if t.indexOfKey(it.Key) >= 0 {
			t.restore(snapshot)
			return BatchInsertionProof{}, ErrDuplicateKey
		}
		if big.NewInt(int64(len(t.nodes))).Cmp(t.maxLeaves()) >= 0 {
			t.restore(snapshot)
			return BatchInsertionProof{}, ErrFull
		}

		prevIdx := prevIdxs[i]
		if int(prevIdx) >= len(t.nodes) {
			t.restore(snapshot)
			return BatchInsertionProof{}, ErrBadPrev
		}
		if prevIdx < insertionIdx {
			if int64(prevIdx) < lastExistingPrev {
				t.restore(snapshot)
				return BatchInsertionProof{}, ErrNonMonotonicPrev
			}
			lastExistingPrev = int64(prevIdx)
		}
		if err := t.checkPrev(prevIdx, it.Key); err != nil {
			t.restore(snapshot)
			return BatchInsertionProof{}, err
		}

		newIdx := t.rawInsert(prevIdx, it.Key, it.Value)
		pendings = append(pendings, pendingInsert{prevIdx: prevIdx, newIdx: newIdx})
	}
	t.recomputeRoot()

	return t.buildBatchProof(snapshot, insertionIdx, rootBefore, pendings), nil
}

// treeSnapshot is a shallow copy of the mutable state InsertBatch/
// InsertBatchAt roll back to on any mid-batch validation failure.
type treeSnapshot struct {
	nodes  []Node
	leaves []field.Element
	root   field.Element
}

func (t *Tree) snapshot() treeSnapshot {
	return treeSnapshot{
		nodes:  append([]Node(nil), t.nodes...),
		leaves: append([]field.Element(nil), t.leaves...),
		root:   t.root,
	}
}

func (t *Tree) restore(s treeSnapshot) {
	t.nodes = s.nodes
	t.leaves = s.leaves
	t.root = s.root
}

// buildBatchProof assembles the batch-insertion proof once every item in
// the batch has landed: the distinct pre-batch predecessors proven against
// rootBefore, and every predecessor/new-leaf pair proven against rootAfter,
// in insertion order.
func (t *Tree) buildBatchProof(before treeSnapshot, insertionIdx uint32, rootBefore field.Element, pendings []pendingInsert) BatchInsertionProof {
	levelsBefore := merkleLevels(t.hash, before.leaves, t.zeroLeaf)
	levelsAfter := merkleLevels(t.hash, t.leaves, t.zeroLeaf)

	seen := make(map[uint32]bool, len(pendings))
	ogLeaves := make([]Proof, 0, len(pendings))
	for _, pd := range pendings {
		if pd.prevIdx >= insertionIdx || seen[pd.prevIdx] {
			continue
		}
		seen[pd.prevIdx] = true
		ogLeaves = append(ogLeaves, Proof{
			LeafIdx:  pd.prevIdx,
			Leaf:     before.nodes[pd.prevIdx],
			Root:     rootBefore,
			Siblings: siblingsForIndex(levelsBefore, int(pd.prevIdx)),
		})
	}

	prevLeaves := make([]Proof, len(pendings))
	newLeaves := make([]Proof, len(pendings))
	for i, pd := range pendings {
		prevLeaves[i] = Proof{
			LeafIdx:  pd.prevIdx,
			Leaf:     t.nodes[pd.prevIdx],
			Root:     t.root,
			Siblings: siblingsForIndex(levelsAfter, int(pd.prevIdx)),
		}
		newLeaves[i] = Proof{
			LeafIdx:  pd.newIdx,
			Leaf:     t.nodes[pd.newIdx],
			Root:     t.root,
			Siblings: siblingsForIndex(levelsAfter, int(pd.newIdx)),
		}
	}

	emptyRoot, emptySiblings := emptySubtreeProof(levelsBefore, insertionIdx, len(pendings))

	return BatchInsertionProof{
		RootBefore:           rootBefore,
		RootAfter:            t.root,
		InsertionIdx:         insertionIdx,
		EmptySubtreeRoot:     emptyRoot,
		EmptySubtreeSiblings: emptySiblings,
		OgLeaves:             ogLeaves,
		PrevLeaves:           prevLeaves,
		NewLeaves:            newLeaves,
	}
}

// emptySubtreeProof proves that the m leaf slots [insertionIdx,
// insertionIdx+m) were all zeroLeaf in the tree levelsBefore describes.
// It only produces a proof when m is a power of two and insertionIdx
// falls on an m-aligned subtree
// boundary that already exists within levelsBefore; the batch itself is
// never restricted to that shape, it is only this side assertion that is
// best-effort. When the shape doesn't admit a single subtree proof, it
// returns (nil, nil) and the verifier treats the check as not applicable.
func emptySubtreeProof(levelsBefore [][]field.Element, insertionIdx uint32, m int) (field.Element, []field.Element) {
	if m <= 0 || m&(m-1) != 0 {
		return nil, nil
	}
	if insertionIdx%uint32(m) != 0 {
		return nil, nil
	}

	level := bits.TrailingZeros(uint(m))
	if level >= len(levelsBefore) {
		return nil, nil
	}
	idxAtLevel := insertionIdx / uint32(m)
	if int(idxAtLevel) >= len(levelsBefore[level]) {
		return nil, nil
	}

	root := levelsBefore[level][idxAtLevel]
	siblings := make([]field.Element, 0, len(levelsBefore)-1-level)
	idx := idxAtLevel
	for lvl := level; lvl < len(levelsBefore)-1; lvl++ {
		siblings = append(siblings, levelsBefore[lvl][idx^1])
		idx >>= 1
	}
	return root, siblings
}
