package reading

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint maps content to its cache key: the lowercase-hex SHA-256 digest
// of the exact bytes. A collision would serve wrong cached content, so the
// digest must be cryptographic. Empty content is valid and yields a stable
// fingerprint.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
