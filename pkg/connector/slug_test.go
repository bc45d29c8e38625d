package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressObjectID(t *testing.T) {
	const id = "5c6a2821-6bb1-4a7e-b6e1-c50111515c3d"

	assert.Equal(t, "faq6wzib", CompressObjectID(id))
	assert.Equal(t, CompressObjectID(id), CompressObjectID(id))
	assert.Equal(t, CompressObjectID(id), CompressObjectID("5c6a28216bb14a7eb6e1c50111515c3d"),
		"dashes are insignificant")
	assert.Equal(t, CompressObjectID(id), CompressObjectID("5C6A2821-6BB1-4A7E-B6E1-C50111515C3D"))
}

func TestCompressObjectIDDistinct(t *testing.T) {
	ids := []string{
		"5c6a2821-6bb1-4a7e-b6e1-c50111515c3d",
		"0f2d9b3e-1c4a-4d8b-9e6f-7a5b3c2d1e0f",
		"a1b2c3d4-e5f6-4789-8abc-def012345678",
		"11111111-2222-4333-8444-555555555555",
		"98765432-1fed-4cba-9876-543210fedcba",
	}

	seen := map[string]string{}
	for _, id := range ids {
		c := CompressObjectID(id)
		assert.Len(t, c, 8)
		assert.NotContains(t, seen, c, "collision between %s and %s", id, seen[c])
		seen[c] = id
	}
}

func TestKebab(t *testing.T) {
	cases := map[string]string{
		"My First Post":     "my-first-post",
		"Hello, World!":     "hello-world",
		"🚀 Launch Plan":     "launch-plan",
		"  already-kebab  ": "already-kebab",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Kebab(in), "input %q", in)
	}
}

func TestLowerCamel(t *testing.T) {
	assert.Equal(t, "dueDate", LowerCamel("Due Date"))
	assert.Equal(t, "status", LowerCamel("Status"))
	assert.Equal(t, "ownerName", LowerCamel("Owner (Name)"))
}

func TestKeyAllocator(t *testing.T) {
	keys := KeyAllocator{}
	assert.Equal(t, "dueDate", keys.Key("Due Date"))
	assert.Equal(t, "dueDate2", keys.Key("Due date"))
	assert.Equal(t, "dueDate3", keys.Key("due date"))
	assert.Equal(t, "status", keys.Key("Status"))

	// A name that is already a suffixed key moves past the taken slot.
	keys = KeyAllocator{}
	assert.Equal(t, "dueDate", keys.Key("Due Date"))
	assert.Equal(t, "dueDate2", keys.Key("Due date"))
	assert.Equal(t, "dueDate22", keys.Key("dueDate2"))
}

func TestDocumentSlug(t *testing.T) {
	const id = "5c6a2821-6bb1-4a7e-b6e1-c50111515c3d"
	assert.Equal(t, "faq6wzib-my-first-post", DocumentSlug(id, "My First Post"))
	assert.Equal(t, "faq6wzib", DocumentSlug(id, ""))
}
