package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/go-vbox/vbb/vbb"
)

// jsonSamples marshals NaN as null, which encoding/json otherwise rejects.
type jsonSamples []float64

func (s jsonSamples) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) {
			buf.WriteString("null")
		} else {
			buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

type jsonAligned struct {
	Name  string      `json:"name"`
	Units string      `json:"units"`
	Data  jsonSamples `json:"data"`
}

type jsonChannel struct {
	Name  string      `json:"name"`
	Units string      `json:"units"`
	Times jsonSamples `json:"times"`
	Data  jsonSamples `json:"data"`
}

const jsonFileName = "channels.json"

func writeJSONFile(dir string, doc any) error {
	path := filepath.Join(dir, jsonFileName)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, append(data, '\n'), 0o644), "writing %s", path)
}

// writeAlignedJSON writes a single document keyed by frequency label.
func writeAlignedJSON(dir string, groups map[int][]vbb.AlignedChannel) error {
	doc := make(map[string][]jsonAligned, len(groups))
	freqs := make([]int, 0, len(groups))
	for freq := range groups {
		freqs = append(freqs, freq)
	}
	sort.Ints(freqs)
	for _, freq := range freqs {
		chans := make([]jsonAligned, len(groups[freq]))
		for i, ch := range groups[freq] {
			chans[i] = jsonAligned{Name: ch.Name, Units: ch.Units, Data: jsonSamples(ch.Data)}
		}
		doc[fmt.Sprintf("%dHz", freq)] = chans
	}
	return writeJSONFile(dir, doc)
}

// writeRawJSON writes a single document listing every channel with its own
// timestamps.
func writeRawJSON(dir string, file *vbb.File) error {
	doc := make([]jsonChannel, len(file.Channels))
	for i, ch := range file.Channels {
		doc[i] = jsonChannel{
			Name:  ch.ShortName,
			Units: ch.Units,
			Times: jsonSamples(ch.Times),
			Data:  jsonSamples(ch.Data),
		}
	}
	return writeJSONFile(dir, doc)
}
