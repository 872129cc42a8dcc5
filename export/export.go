// Package export writes decoded VBB channels to interchange formats. One
// call produces a directory of files: per frequency group when aligned,
// per channel otherwise. Files within a call are written concurrently.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-vbox/vbb/logging"
	"github.com/go-vbox/vbb/vbb"
)

// Format selects an output encoding.
type Format string

// Supported formats.
const (
	CSV  Format = "csv"
	JSON Format = "json"
	BSON Format = "bson"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case CSV, JSON, BSON:
		return f, nil
	}
	return "", errors.Errorf("unknown export format %q (want csv, json or bson)", s)
}

// Options configure a Write call.
type Options struct {
	// Dir is created if missing.
	Dir     string
	Format  Format
	Aligned bool
}

// Write exports the file's channels under opts.Dir.
func Write(f *vbb.File, opts Options, logger logging.Logger) error {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", opts.Dir)
	}
	if opts.Aligned {
		groups := vbb.AlignByFrequency(f, logger)
		logger.Infow("exporting aligned channels",
			"dir", opts.Dir, "format", opts.Format, "groups", len(groups))
		switch opts.Format {
		case CSV:
			return writeAlignedCSV(opts.Dir, groups)
		case JSON:
			return writeAlignedJSON(opts.Dir, groups)
		case BSON:
			return writeAlignedBSON(opts.Dir, groups)
		}
		return errors.Errorf("unknown export format %q", opts.Format)
	}
	logger.Infow("exporting raw channels",
		"dir", opts.Dir, "format", opts.Format, "channels", len(f.Channels))
	switch opts.Format {
	case CSV:
		return writeRawCSV(opts.Dir, f)
	case JSON:
		return writeRawJSON(opts.Dir, f)
	case BSON:
		return writeRawBSON(opts.Dir, f)
	}
	return errors.Errorf("unknown export format %q", opts.Format)
}

// groupFileName labels one frequency group's output file, e.g.
// channels_100Hz.csv.
func groupFileName(freq int, ext string) string {
	return fmt.Sprintf("channels_%dHz.%s", freq, ext)
}

// channelFileName derives a safe file name from a channel's short name.
func channelFileName(name, ext string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		b.WriteString("channel")
	}
	return b.String() + "." + ext
}

// columnLabel is the header cell for a channel, name plus units when
// known.
func columnLabel(name, units string) string {
	if units == "" {
		return name
	}
	return fmt.Sprintf("%s [%s]", name, units)
}
