package cli

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/go-vbox/vbb/vbb"
)

func alignAction(c *cli.Context) error {
	f, err := decodeArg(c)
	if err != nil {
		return err
	}
	groups := vbb.AlignByFrequency(f, loggerFor(c))

	freqs := make([]int, 0, len(groups))
	for freq := range groups {
		freqs = append(freqs, freq)
	}
	sort.Ints(freqs)

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Frequency", "Channels", "Axis points"})
	for _, freq := range freqs {
		chans := groups[freq]
		// The axis channel sits last and is not a member.
		axis := chans[len(chans)-1]
		t.AppendRow(table.Row{fmt.Sprintf("%dHz", freq), len(chans) - 1, len(axis.Data)})
	}
	t.Render()
	return nil
}
