package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainEdge prefixes edge hashes. The version suffix leaves room for a
// different algorithm later.
const DomainEdge = "binder/edge/v1"

// hashWithDomain computes SHA256(domain + 0x00 + parts joined by 0x00).
// The separators keep adjacent parts from running into each other.
func hashWithDomain(domain string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// EdgeKey computes the content hash of a binding's endpoints and kinds.
func EdgeKey(src, dest ID, srcKind, destKind Kind) string {
	return hashWithDomain(DomainEdge,
		string(srcKind), idString(src),
		string(destKind), idString(dest),
	)
}

func idString(id ID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
