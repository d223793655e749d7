package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/AlbertoV5/tosclib/lexml"
)

// Fingerprint hashes the compact markup of root with BLAKE3.
//
// Two trees with equal markup share a fingerprint regardless of the
// compression level used to store them.
func Fingerprint(root *lexml.Node) [32]byte {
	return blake3.Sum256(lexml.EmitWithOptions(root, lexml.EmitOptions{}))
}

// FormatFingerprint renders a fingerprint as 64 lowercase hex digits.
func FormatFingerprint(h [32]byte) string {
	return hex.EncodeToString(h[:])
}

// ParseFingerprint reads a fingerprint written by FormatFingerprint.
// Upper case digits are accepted.
func ParseFingerprint(s string) ([32]byte, error) {
	var h [32]byte
	if len(s) != hex.EncodedLen(len(h)) {
		return h, fmt.Errorf("codec: fingerprint has %d hex digits, want %d", len(s), hex.EncodedLen(len(h)))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("codec: fingerprint: %w", err)
	}
	return h, nil
}
