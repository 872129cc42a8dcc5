package vbb

import (
	"math"
	"sort"

	"github.com/go-vbox/vbb/logging"
)

// TimeAxisName is the synthetic channel appended to every aligned group,
// holding the group's shared time axis.
const TimeAxisName = "time (GNSS)"

// AlignedChannel is one channel resampled onto its frequency group's
// shared time axis. Data holds NaN where the channel had no sample at an
// axis point.
type AlignedChannel struct {
	Name  string
	Units string
	Data  []float64
}

// EstimatedFrequency returns the integer sample rate implied by a
// channel's timestamps. A single sample leaves the rate undefined and
// returns 0, as does a non-increasing span.
func EstimatedFrequency(times []float64) int {
	if len(times) < 2 {
		return 0
	}
	span := times[len(times)-1] - times[0]
	if span <= 0 {
		return 0
	}
	return int(math.Round(float64(len(times)-1) / span))
}

// AlignByFrequency groups channels by estimated sample rate and maps each
// group's channels onto the sorted union of their timestamps. Channels
// without samples are skipped. The result maps the integer frequency to
// the group's aligned channels, axis last.
func AlignByFrequency(f *File, logger logging.Logger) map[int][]AlignedChannel {
	groups := make(map[int][]*Channel)
	for _, ch := range f.Channels {
		if len(ch.Times) == 0 {
			logger.Debugw("skipping channel with no samples", "channel", ch.ShortName)
			continue
		}
		freq := EstimatedFrequency(ch.Times)
		groups[freq] = append(groups[freq], ch)
	}

	out := make(map[int][]AlignedChannel, len(groups))
	for freq, chans := range groups {
		axis := unionAxis(chans)
		if len(axis) == 0 {
			logger.Warnw("empty alignment group", "frequency", freq)
			continue
		}
		pos := make(map[float64]int, len(axis))
		for i, t := range axis {
			pos[t] = i
		}
		aligned := make([]AlignedChannel, 0, len(chans)+1)
		for _, ch := range chans {
			data := make([]float64, len(axis))
			for i := range data {
				data[i] = math.NaN()
			}
			for i, t := range ch.Times {
				data[pos[t]] = ch.Data[i]
			}
			aligned = append(aligned, AlignedChannel{Name: ch.ShortName, Units: ch.Units, Data: data})
		}
		aligned = append(aligned, AlignedChannel{Name: TimeAxisName, Units: "s", Data: axis})
		out[freq] = aligned
		logger.Debugw("aligned group", "frequency", freq, "channels", len(chans), "points", len(axis))
	}
	return out
}

// unionAxis merges member timestamps into a sorted, deduplicated axis.
// Timestamps decoded from equal tick values compare exactly equal, so
// dedup needs no tolerance.
func unionAxis(chans []*Channel) []float64 {
	total := 0
	for _, ch := range chans {
		total += len(ch.Times)
	}
	axis := make([]float64, 0, total)
	for _, ch := range chans {
		axis = append(axis, ch.Times...)
	}
	sort.Float64s(axis)
	n := 0
	for i, t := range axis {
		if i == 0 || t != axis[n-1] {
			axis[n] = t
			n++
		}
	}
	return axis[:n]
}
