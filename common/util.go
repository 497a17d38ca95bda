package common

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Keccak256 computes the legacy (pre-standard) Keccak-256 digest of data
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}

	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Keccak256Hex returns the 0x-prefixed hex encoding of the Keccak-256 digest
func Keccak256Hex(data []byte) string {
	sum := Keccak256(data)
	return "0x" + hex.EncodeToString(sum[:])
}

// Blake2b256 computes a 32 byte BLAKE2b digest of data
func Blake2b256(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// Selector returns the 4 byte function selector of a canonical signature such
// as `transfer(address,uint256)`
func Selector(signature string) [4]byte {
	sum := Keccak256([]byte(signature))

	var sel [4]byte
	copy(sel[:], sum[:4])
	return sel
}

// SelectorHex returns the selector of a signature as 8 lowercase hex digits
func SelectorHex(signature string) string {
	sel := Selector(signature)
	return hex.EncodeToString(sel[:])
}
