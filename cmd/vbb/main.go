// Package main is the vbb command line tool.
package main

import (
	"os"

	"github.com/go-vbox/vbb/cli"
	"github.com/go-vbox/vbb/logging"
)

var logger = logging.NewLogger("vbb")

func main() {
	if err := cli.NewApp(os.Stdout).Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}
