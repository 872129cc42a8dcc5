package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/go-vbox/vbb/vbb"
)

const timeLayout = "2006-01-02 15:04:05"

func fileArg(c *cli.Context) (string, error) {
	if c.Args().Len() != 1 {
		return "", errors.New("expected exactly one file argument")
	}
	return c.Args().First(), nil
}

func decodeArg(c *cli.Context, extra ...vbb.Option) (*vbb.File, error) {
	path, err := fileArg(c)
	if err != nil {
		return nil, err
	}
	opts := extra
	if n := c.Int(chunkSizeFlag); n > 0 {
		opts = append(opts, vbb.WithChunkSize(n))
	}
	return vbb.DecodeFileWithLogger(path, loggerFor(c), opts...)
}

func infoAction(c *cli.Context) error {
	f, err := decodeArg(c)
	if err != nil {
		return err
	}
	out := c.App.Writer

	endian := "little"
	if f.Header.BigEndian {
		endian = "big"
	}
	fmt.Fprintf(out, "version:  %d (%s endian)\n", f.Header.Version, endian)
	fmt.Fprintf(out, "created:  %s (%s)\n", f.Header.Created.Time.Format(timeLayout), f.Header.Created.Kind)
	fmt.Fprintf(out, "modified: %s (%s)\n", f.Header.Modified.Time.Format(timeLayout), f.Header.Modified.Kind)
	fmt.Fprintf(out, "groups: %d  dictionary: %d  channels: %d  dumps: %d  samples: %d\n",
		len(f.Groups), len(f.Dictionary), len(f.Channels), len(f.Dumps), f.SampleCount())

	if len(f.Dictionary) > 0 {
		fmt.Fprintln(out)
		renderDictionaryTable(out, f)
	}
	if len(f.Channels) > 0 {
		fmt.Fprintln(out)
		renderChannelTable(out, f, c.Bool(statsFlag))
	}
	return nil
}

func renderDictionaryTable(out io.Writer, f *vbb.File) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Group", "Name", "Type", "Value"})
	for _, item := range f.Dictionary {
		t.AppendRow(table.Row{item.GroupID, item.Name, item.Type.String(), displayValue(item.Value)})
	}
	for _, dump := range f.Dumps {
		t.AppendRow(table.Row{fmt.Sprintf("block %d", dump.BlockType), dump.Name, dump.Type.String(), displayValue(dump.Value)})
	}
	t.Render()
}

func displayValue(v any) string {
	if b, ok := v.([]byte); ok {
		return fmt.Sprintf("%d bytes", len(b))
	}
	if dt, ok := v.(vbb.DateTime); ok {
		return dt.Time.Format(timeLayout)
	}
	return fmt.Sprintf("%v", v)
}

func renderChannelTable(out io.Writer, f *vbb.File, withStats bool) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	header := table.Row{"ID", "Name", "Units", "Type", "Scale", "Offset", "Samples"}
	if withStats {
		header = append(header, "Min", "Max", "Mean", "Stdev")
	}
	t.AppendHeader(header)
	for _, ch := range f.Channels {
		row := table.Row{ch.ID, ch.ShortName, ch.Units, ch.Type.String(), ch.Scale, ch.Offset, len(ch.Data)}
		if withStats {
			row = append(row, channelStats(ch.Data)...)
		}
		t.AppendRow(row)
	}
	t.Render()
}

func channelStats(data []float64) table.Row {
	if len(data) == 0 {
		return table.Row{"", "", "", ""}
	}
	d := stats.Float64Data(data)
	minV, _ := d.Min()
	maxV, _ := d.Max()
	mean, _ := d.Mean()
	stdev, _ := d.StandardDeviation()
	return table.Row{
		fmt.Sprintf("%.4g", minV),
		fmt.Sprintf("%.4g", maxV),
		fmt.Sprintf("%.4g", mean),
		fmt.Sprintf("%.4g", stdev),
	}
}
