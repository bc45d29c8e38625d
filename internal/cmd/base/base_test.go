package base

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagSetHelp(t *testing.T) {
	var cfg string
	var users bool
	f := NewFlagSet(flag.NewFlagSet("sync", flag.ContinueOnError))
	f.StringVar(&cfg, "config", "config.hcl", "Path to config file")
	f.BoolVar(&users, "users", false, "Sync users only")

	help := f.Help()
	assert.Contains(t, help, "Options:")
	assert.Contains(t, help, "-config=config.hcl")
	assert.Contains(t, help, "Path to config file")
	assert.Contains(t, help, "-users\n")
	assert.NotContains(t, help, "-users=false")
}

func TestLoadConfig(t *testing.T) {
	c := NewCommand(hclog.NewNullLogger(), cli.NewMockUi())

	_, err := c.LoadConfig("")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

notion {
  api_key = "secret"
}

database {
  driver = "sqlite"
  path   = "mirror.db"
}
`), 0o600))

	cfg, err := c.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}
