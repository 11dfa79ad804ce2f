package shortener

import (
	"strings"
	"testing"
)

func TestGenerateSecureSlug_RejectsInvalidLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, -1} {
		if _, err := GenerateSecureSlug(length); err == nil {
			t.Fatalf("expected error for length %d", length)
		}
	}
}

func TestGenerateSecureSlug_ProducesAlphabetOnly(t *testing.T) {
	t.Parallel()

	for _, length := range []int{1, 8, 10, 32} {
		slug, err := GenerateSecureSlug(length)
		if err != nil {
			t.Fatalf("unexpected error for length %d: %v", length, err)
		}
		if len(slug) != length {
			t.Fatalf("expected slug of length %d, got %d", length, len(slug))
		}
		for i := 0; i < len(slug); i++ {
			if strings.IndexByte(alphabet, slug[i]) < 0 {
				t.Fatalf("slug %q contains character outside the alphabet", slug)
			}
		}
	}
}

func TestGenerateSecureSlug_NoCollisionsInSmallBatch(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		slug, err := GenerateSecureSlug(10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, dup := seen[slug]; dup {
			t.Fatalf("duplicate slug %q in a batch of 100", slug)
		}
		seen[slug] = struct{}{}
	}
}

func TestEncodeDecodeID_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, id := range []uint{0, 1, 61, 62, 12345, 999999999} {
		encoded := EncodeID(id)
		if decoded := DecodeID(encoded); decoded != id {
			t.Fatalf("round trip failed for %d: encoded %q decoded %d", id, encoded, decoded)
		}
	}
}

func TestDecodeID_SkipsInvalidCharacters(t *testing.T) {
	t.Parallel()

	if got := DecodeID("1-0"); got != DecodeID("10") {
		t.Fatalf("expected invalid characters to be skipped, got %d", got)
	}
}
