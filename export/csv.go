package export

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"github.com/go-vbox/vbb/vbb"
)

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeAlignedCSV writes one file per frequency group with the shared time
// axis as the first column and a blank cell wherever a channel had no
// sample.
func writeAlignedCSV(dir string, groups map[int][]vbb.AlignedChannel) error {
	var eg errgroup.Group
	for freq, chans := range groups {
		eg.Go(func() error {
			return writeGroupCSV(filepath.Join(dir, groupFileName(freq, "csv")), chans)
		})
	}
	return eg.Wait()
}

func writeGroupCSV(path string, chans []vbb.AlignedChannel) error {
	// The axis arrives last; the file wants it first.
	ordered := make([]vbb.AlignedChannel, 0, len(chans))
	for _, ch := range chans {
		if ch.Name == vbb.TimeAxisName {
			ordered = append([]vbb.AlignedChannel{ch}, ordered...)
		} else {
			ordered = append(ordered, ch)
		}
	}
	if len(ordered) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)

	w := csv.NewWriter(f)
	header := make([]string, len(ordered))
	for i, ch := range ordered {
		header[i] = columnLabel(ch.Name, ch.Units)
	}
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	row := make([]string, len(ordered))
	for i := range ordered[0].Data {
		for j, ch := range ordered {
			row[j] = formatCell(ch.Data[i])
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %s", path)
}

// writeRawCSV writes one time,value file per channel.
func writeRawCSV(dir string, file *vbb.File) error {
	var eg errgroup.Group
	for _, ch := range file.Channels {
		eg.Go(func() error {
			return writeChannelCSV(filepath.Join(dir, channelFileName(ch.ShortName, "csv")), ch)
		})
	}
	return eg.Wait()
}

func writeChannelCSV(path string, ch *vbb.Channel) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time [s]", columnLabel(ch.ShortName, ch.Units)}); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	for i, t := range ch.Times {
		if err := w.Write([]string{formatCell(t), formatCell(ch.Data[i])}); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %s", path)
}
