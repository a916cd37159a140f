package attribution

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashPII returns u with name, email and phone replaced by their SHA-256
// hex digests. Emails are lowercased first so the digest is stable.
func hashPII(u UserData) UserData {
	u.Name = hashValue(strings.TrimSpace(u.Name))
	u.Email = hashValue(strings.ToLower(strings.TrimSpace(u.Email)))
	u.Phone = hashValue(strings.TrimSpace(u.Phone))
	return u
}

func hashValue(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
