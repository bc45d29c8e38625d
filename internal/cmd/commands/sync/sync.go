package sync

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/notion-mirror/internal/app"
	"github.com/hashicorp-forge/notion-mirror/internal/cmd/base"
	"github.com/hashicorp-forge/notion-mirror/pkg/cache"
)

type Command struct {
	*base.Command

	flagConfig   string
	flagDatabase string
	flagDocument string
	flagUsers    bool
}

func (c *Command) Synopsis() string {
	return "Mirror Notion objects into the cache"
}

func (c *Command) Help() string {
	return `Usage: notion-mirror sync -config=config.hcl [options]

  Fetch objects from Notion and write them to the cache.

  Without -database, -document or -users, users, databases, the documents of
  every database and the content of every stale document are synced. The
  flags select individual pipelines and can be combined.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("sync", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "config.hcl", "Path to config file",
	)
	f.StringVar(
		&c.flagDatabase, "database", "",
		"Notion id of a database whose documents and stale content to sync.",
	)
	f.StringVar(
		&c.flagDocument, "document", "",
		"Notion id of a document to sync. Content is fetched only if stale.",
	)
	f.BoolVar(
		&c.flagUsers, "users", false,
		"Sync workspace users.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	logger, ui := c.Log, c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing: %v", err))
		return 1
	}
	defer a.Close()

	if err := c.sync(ctx, a); err != nil {
		ui.Error(fmt.Sprintf("error syncing: %v", err))
		return 1
	}

	ui.Info("Sync complete")
	return 0
}

func (c *Command) sync(ctx context.Context, a *app.App) error {
	s := a.Datastore.Sync

	if !c.flagUsers && c.flagDatabase == "" && c.flagDocument == "" {
		return s.All(ctx)
	}

	var result *multierror.Error

	if c.flagUsers {
		users, err := s.Users(ctx)
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			c.UI.Info(fmt.Sprintf("Synced %d users", len(users)))
		}
	}

	if c.flagDatabase != "" {
		docs, err := s.DatabaseDocuments(ctx, c.flagDatabase)
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			fetched := 0
			for i := range docs {
				if !cache.AreCachedDocumentBlocksStale(&docs[i]) {
					continue
				}
				if _, err := s.DocumentContent(ctx, docs[i].NotionID); err != nil {
					result = multierror.Append(result, err)
					continue
				}
				fetched++
			}
			c.UI.Info(fmt.Sprintf(
				"Synced %d documents, fetched content of %d", len(docs), fetched))
		}
	}

	if c.flagDocument != "" {
		doc, err := s.Document(ctx, c.flagDocument)
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			c.UI.Info(fmt.Sprintf("Synced document %q", doc.Slug))
		}
	}

	return result.ErrorOrNil()
}
