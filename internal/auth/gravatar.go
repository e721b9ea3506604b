package auth

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Gravatar returns the protocol-relative avatar URL for email: 200px,
// pg-rated, mystery-person fallback.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
