package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesPath(t *testing.T) {
	p, err := filesPath("http://localhost:8000/files/")
	require.NoError(t, err)
	assert.Equal(t, "/files", p)

	p, err = filesPath("https://mirror.example.com/static/notion")
	require.NoError(t, err)
	assert.Equal(t, "/static/notion", p)

	_, err = filesPath("http://localhost:8000")
	assert.Error(t, err)
}
