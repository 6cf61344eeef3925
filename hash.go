package blsfr

import (
	sha256simd "github.com/minio/sha256-simd"
)

// HashToScalar hashes the concatenation of data with SHA-256 and reduces the
// digest, read as a 256-bit little-endian integer, into canonical range.
// The result is in normal form.
func HashToScalar(data ...[]byte) Scalar {
	h := sha256simd.New()
	for _, d := range data {
		h.Write(d)
	}
	var digest [32]byte
	h.Sum(digest[:0])
	return scalarFromDigest(digest)
}

// TaggedHashToScalar computes SHA256(SHA256(tag) || SHA256(tag) || data...)
// and reduces it into canonical range. The doubled tag prefix gives cheap
// domain separation between protocol uses sharing the same field.
func TaggedHashToScalar(tag []byte, data ...[]byte) Scalar {
	tagHash := sha256simd.Sum256(tag)

	h := sha256simd.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	for _, d := range data {
		h.Write(d)
	}
	var digest [32]byte
	h.Sum(digest[:0])
	return scalarFromDigest(digest)
}

func scalarFromDigest(digest [32]byte) Scalar {
	var s Scalar
	s.SetBytes(digest[:])
	s.reduce256(s.d)
	return s
}
