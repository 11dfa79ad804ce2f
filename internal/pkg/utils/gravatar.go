package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GetGravatarURL builds a Gravatar avatar URL for the given email address.
// The email is normalized (trimmed, lowercased) before hashing as the
// Gravatar spec requires. A non-positive size falls back to 200px.
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
