package cmd

import (
	"bufio"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-mirror/internal/version"
)

// Main runs the CLI with the given arguments and returns the exit code.
//
// The initial log level and format come from NOTION_MIRROR_LOG_LEVEL and
// NOTION_MIRROR_LOG_JSON; commands that load a config file switch to its
// log_level afterwards.
func Main(args []string) int {
	cliName := args[0]

	log := hclog.New(&hclog.LoggerOptions{
		Name:       "notion-mirror",
		Level:      hclog.LevelFromString(os.Getenv("NOTION_MIRROR_LOG_LEVEL")),
		JSONFormat: envBool("NOTION_MIRROR_LOG_JSON"),
	})

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "-v") {
		args = []string{cliName, "version"}
	}

	// No subcommand runs the server.
	if len(args) == 1 {
		args = append(args, "serve")
	}

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	initCommands(log, ui)

	c := &cli.CLI{
		Name:     "notion-mirror",
		Args:     args[1:],
		Version:  version.Version,
		Commands: Commands,
	}

	exitCode, err := c.Run()
	if err != nil {
		log.Error("error running command", "error", err)
		return 1
	}

	return exitCode
}

func envBool(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && v
}
