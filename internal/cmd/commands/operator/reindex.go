package operator

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/notion-mirror/internal/app"
	"github.com/hashicorp-forge/notion-mirror/internal/cmd/base"
	"github.com/hashicorp-forge/notion-mirror/pkg/datastore"
)

type ReindexCommand struct {
	*base.Command

	flagConfig string
}

func (c *ReindexCommand) Synopsis() string {
	return "Rebuild the search index from the cache"
}

func (c *ReindexCommand) Help() string {
	return `Usage: notion-mirror operator reindex -config=config.hcl

  This command clears the search index and indexes every cached document
  whose content has been synced. Notion is not contacted.` +
		c.Flags().Help()
}

func (c *ReindexCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("reindex", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "config.hcl", "Path to config file",
	)

	return f
}

func (c *ReindexCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}
	if cfg.Search == nil {
		ui.Error("search is not configured")
		return 1
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing: %v", err))
		return 1
	}
	defer a.Close()

	n, err := a.Datastore.Sync.Reindex(ctx)
	if errors.Is(err, datastore.ErrSearchDisabled) {
		ui.Error("search is not configured")
		return 1
	}
	if err != nil {
		ui.Error(fmt.Sprintf("error reindexing: %v", err))
		return 1
	}

	ui.Info(fmt.Sprintf("Indexed %d documents", n))
	return 0
}
