package config

// MaxTreeDepth bounds the fixed-size sibling arrays used inside gnark
// circuits (circuits/membership, circuits/insertion). It is independent of
// any particular imt.Tree's runtime Depth, which may be smaller.
const MaxTreeDepth = 32

// ElementSize is the canonical byte width of a BN254 scalar field element
// when written in big-endian form (fr.Element.Bytes()).
const ElementSize = 32
