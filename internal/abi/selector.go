package abi

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Selector is the 4-byte method ID.
type Selector [4]byte

// SelectorOf returns the first four bytes of the legacy Keccak-256 of a
// canonical signature string such as "transfer(address,uint256)".
func SelectorOf(canonical string) Selector {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(canonical))
	sum := h.Sum(nil)
	var sel Selector
	copy(sel[:], sum[:4])
	return sel
}

// Hex renders the selector as 0x-prefixed lowercase hex with 8 digits.
func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

func (s Selector) String() string { return s.Hex() }

// MethodID pairs a selector with the canonical string it was derived from.
type MethodID struct {
	Selector  Selector
	Signature string
}

// MethodIDs returns one MethodID per callable arity of sig.
func MethodIDs(sig Signature) []MethodID {
	ar := sig.Arities()
	out := make([]MethodID, len(ar))
	for i, s := range ar {
		out[i] = MethodID{Selector: SelectorOf(s), Signature: s}
	}
	return out
}
