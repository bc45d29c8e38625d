package main

import (
	"os"

	"github.com/hashicorp-forge/notion-mirror/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
