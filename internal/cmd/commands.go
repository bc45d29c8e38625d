package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-mirror/internal/cmd/base"
	"github.com/hashicorp-forge/notion-mirror/internal/cmd/commands/operator"
	"github.com/hashicorp-forge/notion-mirror/internal/cmd/commands/serve"
	"github.com/hashicorp-forge/notion-mirror/internal/cmd/commands/sync"
	"github.com/hashicorp-forge/notion-mirror/internal/cmd/commands/version"
)

// Commands is the mapping of all available commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"operator": func() (cli.Command, error) {
			return &operator.Command{Command: b}, nil
		},
		"operator reindex": func() (cli.Command, error) {
			return &operator.ReindexCommand{Command: b}, nil
		},
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: b}, nil
		},
		"sync": func() (cli.Command, error) {
			return &sync.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
