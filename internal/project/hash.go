package project

import (
	"crypto/sha256"
)

// Digest — фиксированный 256-битный хеш содержимого файла.
type Digest [32]byte

// HashBytes возвращает дайджест содержимого.
func HashBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine строит составной хеш: H( content || extra1 || extra2 ... ).
// Порядок extra должен быть детерминированным.
func Combine(content Digest, extra ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range extra {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
