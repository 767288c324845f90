package imt

import (
	"testing"

	"github.com/nullset-labs/imt/pkg/field"
)

func TestProveRoundTrip(t *testing.T) {
	tr := mustTree(t, 8)
	keys := []int64{30, 10, 20, 5, 40}
	for _, k := range keys {
		if _, err := tr.Insert(field.New(k), field.New(k)); err != nil {
			t.Fatalf("insert %d: %v", k, err)
		}
	}

	for _, k := range keys {
		p, err := tr.Prove(field.New(k))
		if err != nil {
			t.Fatalf("prove %d: %v", k, err)
		}
		if !VerifyProof(tr, p) {
			t.Fatalf("proof for key %d did not verify", k)
		}
	}
}

func TestProveUnknownKeyFails(t *testing.T) {
	tr := mustTree(t, 8)
	if _, err := tr.Insert(field.New(10), field.New(1)); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := tr.Prove(field.New(99)); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestVerifyProofRejectsTamperedLeaf(t *testing.T) {
	tr := mustTree(t, 8)
	if _, err := tr.Insert(field.New(10), field.New(1)); err != nil {
		t.Fatalf("setup: %v", err)
	}
	p, err := tr.Prove(field.New(10))
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	p.Leaf.Value = field.New(999)
	if VerifyProof(tr, p) {
		t.Fatal("tampered proof verified")
	}
}

func TestProveExclusion(t *testing.T) {
	tr := mustTree(t, 8)
	keys := []int64{10, 30, 50}
	for _, k := range keys {
		if _, err := tr.Insert(field.New(k), field.New(k)); err != nil {
			t.Fatalf("insert %d: %v", k, err)
		}
	}

	cases := []struct {
		absent   int64
		wantPrev int64
	}{
		{1, 0},   // below the lowest key: predecessor is the sentinel (key 0)
		{20, 10}, // between 10 and 30
		{99, 50}, // above the highest key
	}
	for _, c := range cases {
		p, err := tr.ProveExclusion(field.New(c.absent))
		if err != nil {
			t.Fatalf("exclusion proof for %d: %v", c.absent, err)
		}
		if p.Leaf.Key.Int64() != c.wantPrev {
			t.Fatalf("exclusion(%d) predecessor key = %d, want %d", c.absent, p.Leaf.Key.Int64(), c.wantPrev)
		}
		if !VerifyProof(tr, p) {
			t.Fatalf("exclusion proof for %d did not verify", c.absent)
		}
	}
}

func TestProveExclusionRejectsPresentKey(t *testing.T) {
	tr := mustTree(t, 8)
	if _, err := tr.Insert(field.New(10), field.New(1)); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := tr.ProveExclusion(field.New(10)); err != ErrKeyExists {
		t.Fatalf("got %v, want ErrKeyExists", err)
	}
}

func TestInsertionProofRoundTrip(t *testing.T) {
	tr := mustTree(t, 8)
	keys := []int64{30, 10, 20, 5, 1, 100}
	for _, k := range keys {
		ip, err := tr.Insert(field.New(k), field.New(k))
		if err != nil {
			t.Fatalf("insert %d: %v", k, err)
		}
		if !VerifyInsertionProof(tr, ip) {
			t.Fatalf("insertion proof for key %d did not verify", k)
		}
	}
}

func TestInsertionProofRejectsSwappedRoots(t *testing.T) {
	tr := mustTree(t, 8)
	if _, err := tr.Insert(field.New(10), field.New(1)); err != nil {
		t.Fatalf("setup: %v", err)
	}
	ip, err := tr.Insert(field.New(20), field.New(2))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	swapped := ip
	swapped.OgBefore, swapped.OgAfter = swapped.OgAfter, swapped.OgBefore
	if VerifyInsertionProof(tr, swapped) {
		t.Fatal("proof with swapped before/after predecessor verified")
	}
}
