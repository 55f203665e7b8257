// rla-manpage writes man pages for rla and its subcommands. With a
// directory argument one page per command is written there; without one
// the page of the root command goes to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/rla/cmd/rla"
	"github.com/arthur-debert/rla/internal/version"
)

func main() {
	rootCmd := rla.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "RLA",
		Section: "1",
		Source:  "rla " + version.Version,
		Manual:  "rla manual",
	}

	var err error
	if len(os.Args) > 1 {
		dir := os.Args[1]
		if err = os.MkdirAll(dir, 0755); err == nil {
			err = doc.GenManTree(rootCmd, header, dir)
		}
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
