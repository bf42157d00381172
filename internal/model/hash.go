package model

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Domain prefix for content-addressed instance hashes.
// Version suffix enables future algorithm migration.
const DomainInstance = "declmap/instance/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) []byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return h.Sum(nil)
}

// HashValue computes the stable hash of a runtime value. The hash is the
// first 8 bytes of the domain-separated SHA-256 of the canonical encoding,
// so it is stable across processes and restarts for unchanged values.
//
// Instances are hashable only when their contract resolved unsafe_hash=true;
// otherwise the canonical encoding fails and the error propagates.
func HashValue(v Value) (uint64, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return 0, fmt.Errorf("HashValue: %w", err)
	}
	sum := hashWithDomain(DomainInstance, canonical)
	return binary.BigEndian.Uint64(sum[:8]), nil
}

// MustHashValue is like HashValue but panics on error.
// Use only in tests or when inputs are known to be hashable.
func MustHashValue(v Value) uint64 {
	h, err := HashValue(v)
	if err != nil {
		panic(err)
	}
	return h
}
