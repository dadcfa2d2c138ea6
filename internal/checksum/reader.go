package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Reader hashes everything read through it.
type Reader struct {
	r io.Reader
	h hash.Hash
	n int64
}

// NewReader wraps r. Panics if r is nil.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &Reader{r: r, h: sha256.New()}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.h.Write(p[:n])
		r.n += int64(n)
	}
	return n, err
}

// Sum returns the hex SHA-256 of the bytes read so far.
func (r *Reader) Sum() string {
	return hex.EncodeToString(r.h.Sum(nil))
}

// Size returns the number of bytes read so far.
func (r *Reader) Size() int64 {
	return r.n
}
