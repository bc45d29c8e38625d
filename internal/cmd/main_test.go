package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvBool(t *testing.T) {
	t.Setenv("NOTION_MIRROR_LOG_JSON", "true")
	assert.True(t, envBool("NOTION_MIRROR_LOG_JSON"))

	t.Setenv("NOTION_MIRROR_LOG_JSON", "nope")
	assert.False(t, envBool("NOTION_MIRROR_LOG_JSON"))

	t.Setenv("NOTION_MIRROR_LOG_JSON", "")
	assert.False(t, envBool("NOTION_MIRROR_LOG_JSON"))
}

func TestMainVersion(t *testing.T) {
	assert.Equal(t, 0, Main([]string{"notion-mirror", "-version"}))
}
