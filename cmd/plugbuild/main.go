package main

import (
	"os"

	"github.com/majorcontext/plugbuild/cmd/plugbuild/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
