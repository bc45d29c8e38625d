package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

func TestJSONScan(t *testing.T) {
	var j JSON[*notion.File]
	require.NoError(t, j.Scan([]byte(`{"url":"https://example.com/a.png"}`)))
	require.NotNil(t, j.Data)
	assert.Equal(t, "https://example.com/a.png", j.Data.URL)

	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j.Data)

	require.NoError(t, j.Scan("null"))
	assert.Nil(t, j.Data)

	assert.Error(t, j.Scan(42))
}

func TestJSONValueOfNil(t *testing.T) {
	v, err := NewJSON[*notion.Icon](nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "null", v)
}
