package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// BlindIndex produces a deterministic one-way digest of value, canonicalized
// to lower case and mixed with a secret salt. Equal canonical plaintexts
// always collide to the same digest, which is what makes exact-match lookup
// work without decrypting anything.
//
// Tradeoff, stated rather than hidden: determinism means an attacker holding
// the salt can test a candidate dictionary against stored digests. The index
// salt must therefore be treated as a secret, distinct from the KDF salt.
func BlindIndex(value, salt string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(value) + salt))
	return hex.EncodeToString(sum[:])
}
