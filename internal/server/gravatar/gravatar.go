// Package gravatar builds Gravatar image URLs from email addresses.
package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// URL returns the Gravatar image URL for email. The address is normalized
// (trimmed, lowercased) before hashing, per the Gravatar spec.
func URL(email string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(email))
	if addr == "" {
		return "", errors.New("empty email")
	}
	sum := md5.Sum([]byte(addr))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(sum[:])), nil
}
