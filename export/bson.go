package export

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"github.com/go-vbox/vbb/vbb"
)

// writeAlignedBSON writes one file per frequency group holding a sequence
// of length-prefixed documents, one per axis point, suitable for
// mongoimport. NaN doubles are kept; BSON represents them natively.
func writeAlignedBSON(dir string, groups map[int][]vbb.AlignedChannel) error {
	var eg errgroup.Group
	for freq, chans := range groups {
		eg.Go(func() error {
			return writeGroupBSON(filepath.Join(dir, groupFileName(freq, "bson")), chans)
		})
	}
	return eg.Wait()
}

func writeGroupBSON(path string, chans []vbb.AlignedChannel) error {
	var axis vbb.AlignedChannel
	others := make([]vbb.AlignedChannel, 0, len(chans))
	for _, ch := range chans {
		if ch.Name == vbb.TimeAxisName {
			axis = ch
		} else {
			others = append(others, ch)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	w := bufio.NewWriter(f)

	for i := range axis.Data {
		doc := bson.D{{Key: "time", Value: axis.Data[i]}}
		for _, ch := range others {
			doc = append(doc, bson.E{Key: ch.Name, Value: ch.Data[i]})
		}
		raw, err := bson.Marshal(doc)
		if err != nil {
			return errors.Wrapf(err, "encoding %s", path)
		}
		if _, err := w.Write(raw); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return errors.Wrapf(w.Flush(), "flushing %s", path)
}

// writeRawBSON writes one file per channel with a document per sample.
func writeRawBSON(dir string, file *vbb.File) error {
	var eg errgroup.Group
	for _, ch := range file.Channels {
		eg.Go(func() error {
			return writeChannelBSON(filepath.Join(dir, channelFileName(ch.ShortName, "bson")), ch)
		})
	}
	return eg.Wait()
}

func writeChannelBSON(path string, ch *vbb.Channel) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	w := bufio.NewWriter(f)

	for i, t := range ch.Times {
		raw, err := bson.Marshal(bson.D{
			{Key: "time", Value: t},
			{Key: "value", Value: ch.Data[i]},
		})
		if err != nil {
			return errors.Wrapf(err, "encoding %s", path)
		}
		if _, err := w.Write(raw); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return errors.Wrapf(w.Flush(), "flushing %s", path)
}
