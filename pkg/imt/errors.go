package imt

import "errors"

// Precondition errors.
var (
	ErrNotInit          = errors.New("imt: tree not initialized")
	ErrAlreadyInit      = errors.New("imt: tree already initialized")
	ErrBadDepth         = errors.New("imt: depth must be in [1,254]")
	ErrBadPrev          = errors.New("imt: prevIdx does not precede key")
	ErrEmptyBatch       = errors.New("imt: batch must contain at least one item")
	ErrBatchShape       = errors.New("imt: items and prevIdxs must have equal, non-zero length")
	ErrNonMonotonicPrev = errors.New("imt: existing-node prevIdxs must be non-decreasing across a batch")
)

// Input errors.
var (
	ErrInvalidKey   = errors.New("imt: key must satisfy 0 < key <= modulus")
	ErrInvalidValue = errors.New("imt: value must satisfy 0 <= value <= modulus")
	ErrDuplicateKey = errors.New("imt: key already present")
)

// Capacity errors.
var ErrFull = errors.New("imt: tree is full")

// Lookup errors.
var (
	ErrNotFound  = errors.New("imt: key not found")
	ErrKeyExists = errors.New("imt: key already exists, no exclusion proof possible")
)
