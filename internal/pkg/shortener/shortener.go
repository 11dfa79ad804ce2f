package shortener

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Base62 alphabet (0-9, a-z, A-Z)
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateSecureSlug creates a cryptographically secure random Base62 slug,
// used for affiliate codes. Bytes are drawn with rejection sampling so every
// alphabet character is equally likely.
func GenerateSecureSlug(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid slug length: %d", length)
	}

	// 248 is the largest multiple of 62 below 256; anything above it would
	// bias the modulo.
	const maxRandomByte = 248

	var slug strings.Builder
	slug.Grow(length)

	buf := make([]byte, length*2)
	for slug.Len() < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read secure random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= maxRandomByte {
				continue
			}
			slug.WriteByte(alphabet[int(b)%len(alphabet)])
			if slug.Len() == length {
				break
			}
		}
	}

	return slug.String(), nil
}

// EncodeID converts a numeric id into a short Base62 string for share links.
func EncodeID(id uint) string {
	if id == 0 {
		return string(alphabet[0])
	}

	// Digits come out least-significant first, so prepend.
	var out []byte
	for id > 0 {
		out = append([]byte{alphabet[id%62]}, out...)
		id /= 62
	}
	return string(out)
}

// DecodeID converts a Base62 string back into a numeric id, skipping any
// character outside the alphabet.
func DecodeID(encoded string) uint {
	var id uint
	for i := 0; i < len(encoded); i++ {
		value := strings.IndexByte(alphabet, encoded[i])
		if value < 0 {
			continue
		}
		id = id*62 + uint(value)
	}
	return id
}
