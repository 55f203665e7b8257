package main

import (
	"os"

	"github.com/arthur-debert/rla/cmd/rla"
)

func main() {
	rootCmd := rla.NewRootCmd()
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		rla.PrintError(cmd, err)
		os.Exit(1)
	}
}
