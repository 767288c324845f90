package imt

import (
	"math/big"
	"testing"

	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
)

func TestInitTwiceFails(t *testing.T) {
	tr := mustTree(t, 4)
	if err := tr.Init(4); err != ErrAlreadyInit {
		t.Fatalf("got %v, want ErrAlreadyInit", err)
	}
}

func TestInitBadDepth(t *testing.T) {
	tr := New(sumHash{}, true)
	for _, d := range []uint8{0, 255} {
		if err := tr.Init(d); err != ErrBadDepth {
			t.Fatalf("depth %d: got %v, want ErrBadDepth", d, err)
		}
	}
}

func TestEmptyTreeRootIsZeroLeaf(t *testing.T) {
	tr := mustTree(t, 4)
	zl := hash.ZeroLeaf(sumHash{})
	if !field.Equal(tr.Root(), zl) {
		t.Fatalf("empty root = %s, want zero-leaf %s", tr.Root(), zl)
	}
	if tr.NumOfLeaves() != 1 {
		t.Fatalf("numOfLeaves = %d, want 1 (sentinel only)", tr.NumOfLeaves())
	}
}

func TestInsertRejectsInvalidKey(t *testing.T) {
	tr := mustTree(t, 4)
	cases := []field.Element{nil, field.Zero(), big.NewInt(-1)}
	for _, k := range cases {
		if _, err := tr.Insert(k, field.New(1)); err != ErrInvalidKey {
			t.Fatalf("key %v: got %v, want ErrInvalidKey", k, err)
		}
	}
}

func TestInsertRejectsInvalidValue(t *testing.T) {
	tr := mustTree(t, 4)
	if _, err := tr.Insert(field.New(1), big.NewInt(-1)); err != ErrInvalidValue {
		t.Fatalf("got %v, want ErrInvalidValue", err)
	}
}

func TestInsertRejectsDuplicateKey(t *testing.T) {
	tr := mustTree(t, 4)
	if _, err := tr.Insert(field.New(5), field.New(1)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := tr.Insert(field.New(5), field.New(2)); err != ErrDuplicateKey {
		t.Fatalf("got %v, want ErrDuplicateKey", err)
	}
}

func TestInsertRejectsWhenFull(t *testing.T) {
	tr := mustTree(t, 1) // maxLeaves = 2: sentinel + exactly one record
	if _, err := tr.Insert(field.New(1), field.New(1)); err != nil {
		t.Fatalf("insert into empty tree: %v", err)
	}
	if _, err := tr.Insert(field.New(2), field.New(1)); err != ErrFull {
		t.Fatalf("got %v, want ErrFull", err)
	}
}

func TestInsertFailureLeavesTreeUnchanged(t *testing.T) {
	tr := mustTree(t, 4)
	if _, err := tr.Insert(field.New(5), field.New(1)); err != nil {
		t.Fatalf("setup insert: %v", err)
	}
	rootBefore := tr.Root()
	n := tr.NumOfLeaves()

	if _, err := tr.Insert(field.New(5), field.New(99)); err != ErrDuplicateKey {
		t.Fatalf("got %v, want ErrDuplicateKey", err)
	}

	if !field.Equal(tr.Root(), rootBefore) {
		t.Fatalf("root changed after failed insert: %s != %s", tr.Root(), rootBefore)
	}
	if tr.NumOfLeaves() != n {
		t.Fatalf("numOfLeaves changed after failed insert: %d != %d", tr.NumOfLeaves(), n)
	}
}

func TestInsertThreadsSortedLinkedList(t *testing.T) {
	tr := mustTree(t, 8)
	keys := []int64{30, 10, 20, 5}
	for _, k := range keys {
		if _, err := tr.Insert(field.New(k), field.New(k*10)); err != nil {
			t.Fatalf("insert %d: %v", k, err)
		}
	}

	// Walk the linked list from the sentinel and confirm keys come out sorted.
	var got []int64
	idx := uint32(0)
	for {
		n := tr.nodes[idx]
		if n.terminal() {
			break
		}
		idx = n.NextIdx
		got = append(got, tr.nodes[idx].Key.Int64())
	}

	want := []int64{5, 10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("linked list length = %d, want %d (got %v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("linked list[%d] = %d, want %d (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestInsertAtRejectsBadWitness(t *testing.T) {
	tr := mustTree(t, 8)
	if _, err := tr.Insert(field.New(10), field.New(1)); err != nil {
		t.Fatalf("setup: %v", err)
	}
	// Index 1 holds key 10; it does not precede key 5.
	if _, err := tr.InsertAt(1, field.New(5), field.New(1)); err != ErrBadPrev {
		t.Fatalf("got %v, want ErrBadPrev", err)
	}
}

func TestInsertAtMatchesInsert(t *testing.T) {
	tr1 := mustTree(t, 8)
	tr2 := mustTree(t, 8)

	keys := []int64{30, 10, 20}
	for _, k := range keys {
		if _, err := tr1.Insert(field.New(k), field.New(k)); err != nil {
			t.Fatalf("tr1 insert %d: %v", k, err)
		}
		prevIdx, _ := tr2.findPrev(field.New(k))
		if _, err := tr2.InsertAt(prevIdx, field.New(k), field.New(k)); err != nil {
			t.Fatalf("tr2 insertAt %d: %v", k, err)
		}
	}

	if !field.Equal(tr1.Root(), tr2.Root()) {
		t.Fatalf("roots diverged: %s != %s", tr1.Root(), tr2.Root())
	}
}
