package cli

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/go-vbox/vbb/export"
	"github.com/go-vbox/vbb/vbb"
)

func exportAction(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	cfg, err := resolveExportConfig(c)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	logger := loggerFor(c)

	var opts []vbb.Option
	if cfg.ChunkSize > 0 {
		opts = append(opts, vbb.WithChunkSize(cfg.ChunkSize))
	}
	var bar *progressbar.ProgressBar
	if !c.Bool(noProgressFlag) {
		if info, err := os.Stat(path); err == nil {
			bar = progressbar.DefaultBytes(info.Size(), "decoding")
			opts = append(opts, vbb.WithProgress(func(read, _ int64) {
				_ = bar.Set64(read)
			}))
		}
	}

	f, err := vbb.DecodeFileWithLogger(path, logger, opts...)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}
	return export.Write(f, export.Options{
		Dir:     cfg.Out,
		Format:  format,
		Aligned: cfg.Aligned,
	}, logger)
}
