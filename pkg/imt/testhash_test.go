package imt

import (
	"math/big"

	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
)

// sumHash is a deterministic, cheap {H2,H4} pair for unit tests: it sums
// its inputs with a small per-arity domain tag, standing in for the
// production Poseidon2 hash so assertions stay fast and hand-checkable.
// It is not collision resistant and must never be used outside tests.
type sumHash struct{}

var _ hash.Pair = sumHash{}

func (sumHash) H2(a, b field.Element) field.Element {
	return sumTagged(2, a, b)
}

func (sumHash) H4(a, b, c, d field.Element) field.Element {
	return sumTagged(4, a, b, c, d)
}

func sumTagged(tag int64, elems ...field.Element) field.Element {
	sum := big.NewInt(tag)
	for _, e := range elems {
		sum.Add(sum, e)
		sum.Lsh(sum, 1)
	}
	return sum
}

func mustTree(t interface{ Fatalf(string, ...any) }, depth uint8) *Tree {
	tr := New(sumHash{}, true)
	if err := tr.Init(depth); err != nil {
		t.Fatalf("init: %v", err)
	}
	return tr
}
