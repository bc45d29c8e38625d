package connector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
)

const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

var nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// CompressObjectID shortens a Notion id to eight characters by taking the
// hex digits at [4,8), [15,18) and [21,24) of the undashed id and encoding
// the resulting bits in base32, five bits per character with the final group
// zero padded. The result is lowercase. It is stable but not reversible.
func CompressObjectID(id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	if u, err := uuid.Parse(id); err == nil {
		hex = strings.ReplaceAll(u.String(), "-", "")
	}
	if len(hex) < 24 {
		return strings.ToLower(hex)
	}

	selected := hex[4:8] + hex[15:18] + hex[21:24]

	var bits strings.Builder
	for _, r := range selected {
		v := hexValue(r)
		for i := 3; i >= 0; i-- {
			if v&(1<<i) != 0 {
				bits.WriteByte('1')
			} else {
				bits.WriteByte('0')
			}
		}
	}

	s := bits.String()
	var out strings.Builder
	for i := 0; i < len(s); i += 5 {
		end := min(i+5, len(s))
		chunk := s[i:end] + strings.Repeat("0", 5-(end-i))
		idx := 0
		for _, b := range chunk {
			idx = idx<<1 | int(b-'0')
		}
		out.WriteByte(base32Alphabet[idx])
	}

	return strings.ToLower(out.String())
}

func hexValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return 0
}

// normalizeWords strips emoji and collapses every run of punctuation or
// whitespace into a single space.
func normalizeWords(s string) string {
	s = gomoji.RemoveEmojis(s)
	s = nonAlphanumeric.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Kebab converts a title into a URL-safe slug, e.g. "My First Post!" becomes
// "my-first-post".
func Kebab(s string) string {
	return strcase.ToKebab(normalizeWords(s))
}

// LowerCamel converts a display name into an identifier, e.g. "Due Date"
// becomes "dueDate".
func LowerCamel(s string) string {
	return strcase.ToLowerCamel(normalizeWords(s))
}

// KeyAllocator hands out LowerCamel keys for a sequence of display names.
// A name whose key is already taken gets the lowest free numeric suffix,
// starting at 2, so the same input order always yields the same keys.
type KeyAllocator map[string]struct{}

// Key returns the key for name and marks it as taken.
func (a KeyAllocator) Key(name string) string {
	key := LowerCamel(name)
	candidate := key
	for n := 2; ; n++ {
		if _, taken := a[candidate]; !taken {
			break
		}
		candidate = key + strconv.Itoa(n)
	}
	a[candidate] = struct{}{}
	return candidate
}

// DocumentSlug returns the default slug for a document: the compressed id
// followed by the kebab cased title.
func DocumentSlug(id, title string) string {
	kebab := Kebab(title)
	if kebab == "" {
		return CompressObjectID(id)
	}
	return CompressObjectID(id) + "-" + kebab
}
