package base

import (
	"bytes"
	"flag"
	"fmt"
	"strings"
)

// FlagSet wraps flag.FlagSet to render flag usage in command help.
type FlagSet struct {
	*flag.FlagSet
}

func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help returns the usage of every flag, sorted by name.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	buf.WriteString("\n\nOptions:\n")

	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&buf, "\n  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&buf, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&buf, "\n      %s\n", strings.ReplaceAll(fl.Usage, "\n", "\n      "))
	})

	return strings.TrimRight(buf.String(), "\n")
}
