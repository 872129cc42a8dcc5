package vbb

import (
	"go.viam.com/utils"

	"github.com/go-vbox/vbb/logging"
)

// Option configures DecodeFile.
type Option func(*options)

type options struct {
	chunkSize int
	progress  func(read, total int64)
}

// WithChunkSize overrides the default 8 MiB chunk size. The decoded output
// is identical for any positive size; smaller chunks trade syscalls for
// memory.
func WithChunkSize(n int) Option {
	return func(o *options) { o.chunkSize = n }
}

// WithProgress registers a callback invoked with the absolute bytes
// consumed and the total file size as decoding advances.
func WithProgress(fn func(read, total int64)) Option {
	return func(o *options) { o.progress = fn }
}

type decoder struct {
	parser  *recordParser
	layouts map[uint8]*groupLayout
	opts    options
}

func (d *decoder) reportProgress() {
	if d.opts.progress != nil {
		src := d.parser.codec.src
		d.opts.progress(src.Offset(), src.Size())
	}
}

// DecodeFile decodes a VBB log into channels of scaled, rollover-corrected
// samples. On error the returned File still holds everything fully decoded
// before the failure.
func DecodeFile(path string, opts ...Option) (*File, error) {
	logger := logging.NewLogger("vbb")
	logger.SetLevel(logging.ERROR)
	return DecodeFileWithLogger(path, logger, opts...)
}

// DecodeFileWithLogger is DecodeFile with the caller's logger.
func DecodeFileWithLogger(path string, logger logging.Logger, opts ...Option) (*File, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	file := &File{}
	src, err := openSource(path, o.chunkSize)
	if err != nil {
		return file, err
	}
	defer utils.UncheckedErrorFunc(src.Close)
	// Header records are never indexed, so no safety margin applies yet.
	src.SetBufferZone(0)

	c := &codec{src: src}
	p := &recordParser{codec: c, file: file, logger: logger}
	if err := p.parseHeader(); err != nil {
		return file, err
	}
	logger.Debugw("header",
		"version", file.Header.Version,
		"bigEndian", file.Header.BigEndian,
		"utc", file.Header.UTC,
		"created", file.Header.Created.Time,
	)
	if err := p.parseUntilSamples(); err != nil {
		return file, err
	}

	layouts, maxRecordLen, err := buildLayouts(file, src.Offset())
	if err != nil {
		return file, err
	}
	src.SetBufferZone(maxRecordLen + 2)
	logger.Debugw("definitions parsed",
		"groups", len(file.Groups),
		"channels", len(file.Channels),
		"channelGroups", len(file.ChannelGroups),
		"maxRecordLen", maxRecordLen,
	)

	d := &decoder{parser: p, layouts: layouts, opts: o}
	scanErr := d.scanSamples()
	// Midnight repair applies to whatever was decoded, partial or not.
	fixRollovers(file)
	d.reportProgress()
	if scanErr != nil {
		return file, scanErr
	}
	logger.Debugw("decoded", "channels", len(file.Channels), "samples", file.SampleCount())
	return file, nil
}
