package version

import (
	"github.com/hashicorp-forge/notion-mirror/internal/cmd/base"
	"github.com/hashicorp-forge/notion-mirror/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: notion-mirror version

  Print the version of notion-mirror.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
