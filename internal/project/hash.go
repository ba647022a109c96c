package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 over module bytes. A zero Digest means "not computed".
type Digest [32]byte

// Hash digests raw module source.
func Hash(content []byte) Digest {
	return sha256.Sum256(content)
}

// ModuleHash keys everything derived from one module: its source, where it
// and its imports live in the bundle, and the module hashes of the imported
// modules. deps must come in a stable order; the driver passes them in graph
// edge order, which is lexical by bundle path.
//
// Любая правка в зависимости меняет хеш всех импортёров.
func ModuleHash(content, layout Digest, deps []Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	_, _ = h.Write(layout[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	h.Sum(out[:0])
	return out
}

func (d Digest) IsZero() bool { return d == Digest{} }

// Hex is the lowercase hex form used for cache file names.
func (d Digest) Hex() string { return hex.EncodeToString(d[:]) }
