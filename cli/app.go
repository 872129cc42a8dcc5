// Package cli implements the vbb command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"github.com/go-vbox/vbb/logging"
)

// Flag names.
const (
	debugFlag      = "debug"
	chunkSizeFlag  = "chunk-size"
	outFlag        = "out"
	formatFlag     = "format"
	alignedFlag    = "aligned"
	statsFlag      = "stats"
	configFlag     = "config"
	noProgressFlag = "no-progress"
)

// NewApp builds the vbb application with all output directed at out.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "vbb",
		Usage:  "inspect, export and align VBB vehicle telemetry logs",
		Writer: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print a file's header, definitions and channel table",
				ArgsUsage: "<file.vbb>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  statsFlag,
						Usage: "compute per-channel min/max/mean/stdev",
					},
					&cli.IntFlag{
						Name:  chunkSizeFlag,
						Usage: "decode chunk size in bytes (0 for default)",
					},
				},
				Action: infoAction,
			},
			{
				Name:      "export",
				Usage:     "decode a file and write its channels to disk",
				ArgsUsage: "<file.vbb>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  outFlag,
						Usage: "output directory",
						Value: "export",
					},
					&cli.StringFlag{
						Name:  formatFlag,
						Usage: "output format: csv, json or bson",
						Value: "csv",
					},
					&cli.BoolFlag{
						Name:  alignedFlag,
						Usage: "align channels onto per-frequency time axes",
					},
					&cli.IntFlag{
						Name:  chunkSizeFlag,
						Usage: "decode chunk size in bytes (0 for default)",
					},
					&cli.StringFlag{
						Name:  configFlag,
						Usage: "YAML file with export options; flags override it",
					},
					&cli.BoolFlag{
						Name:  noProgressFlag,
						Usage: "suppress the progress bar",
					},
				},
				Action: exportAction,
			},
			{
				Name:      "align",
				Usage:     "summarize frequency groups without writing anything",
				ArgsUsage: "<file.vbb>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  chunkSizeFlag,
						Usage: "decode chunk size in bytes (0 for default)",
					},
				},
				Action: alignAction,
			},
		},
	}
}

func loggerFor(c *cli.Context) logging.Logger {
	logger := logging.NewLogger("vbb")
	if c.Bool(debugFlag) {
		logger.SetLevel(logging.DEBUG)
	}
	return logger
}
