package base

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-mirror/internal/config"
)

// Command is embedded by every CLI command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui
}

// NewCommand returns a Command that logs to log and writes output to ui.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log: log,
		UI:  ui,
	}
}

// LoadConfig parses the configuration file and applies its log level to the
// command logger.
func (c *Command) LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config flag is required")
	}

	cfg, err := config.NewConfig(path)
	if err != nil {
		return nil, err
	}

	c.Log.SetLevel(hclog.LevelFromString(cfg.LogLevel))
	return cfg, nil
}
