// Package field gives the indexed Merkle tree an opaque prime-field scalar
// type. Values are never mapped onto native integers (per the "Big
// integers" design note): they are held as *big.Int and only ever compared,
// bounds-checked, or canonically encoded to 32 bytes for hashing.
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Element is an opaque field element. InBounds checks the canonical range
// [0, Modulus()); the alias itself enforces no range.
type Element = *big.Int

// Modulus returns the BN254 scalar field order, the reference field for
// this implementation's default Poseidon2 hash pair.
func Modulus() *big.Int {
	return fr.Modulus()
}

// Zero returns the additive identity.
func Zero() Element {
	return new(big.Int)
}

// New wraps an int64 as a field element.
func New(v int64) Element {
	return big.NewInt(v)
}

// FromUint32 widens a node index losslessly, since nextIdx must be widened
// to F without truncation.
func FromUint32(v uint32) Element {
	return new(big.Int).SetUint64(uint64(v))
}

// InBounds reports whether x is a well-formed field element: non-negative
// and strictly less than the modulus. A nil x is never in bounds.
func InBounds(x Element) bool {
	if x == nil {
		return false
	}
	if x.Sign() < 0 {
		return false
	}
	return x.Cmp(Modulus()) < 0
}

// Equal reports whether a and b denote the same field element. Both must
// already be in canonical (reduced, non-negative) form; Equal does not
// reduce modulo p itself.
func Equal(a, b Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

// IsZero reports whether x is the zero element.
func IsZero(x Element) bool {
	return x == nil || x.Sign() == 0
}

// ToCanonicalBytes encodes x as the 32-byte big-endian representation gnark
// circuits expect for an fr.Element, i.e. x reduced mod p. This is the
// encoding fed to the Poseidon2 permutation by hash.Poseidon2Pair.
func ToCanonicalBytes(x Element) [32]byte {
	var e fr.Element
	e.SetBigInt(x)
	return e.Bytes()
}

// FromCanonicalBytes decodes a 32-byte big-endian fr.Element encoding back
// into a field element in [0, p).
func FromCanonicalBytes(b [32]byte) Element {
	var e fr.Element
	e.SetBytes(b[:])
	out := new(big.Int)
	e.BigInt(out)
	return out
}
