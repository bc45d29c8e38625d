package operator

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-mirror/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Perform operator-specific tasks"
}

func (c *Command) Help() string {
	return `Usage: notion-mirror operator <subcommand> [options] [args]

  This command groups subcommands for operators maintaining a mirror.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
