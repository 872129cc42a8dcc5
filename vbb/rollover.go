package vbb

// secondsPerDay is the amount added at each detected midnight rollover.
const secondsPerDay = 86400

// fixRollovers repairs midnight wraparound in every channel's timestamps.
// The channel named exactly "time" carries a clock as its data, so its
// sample values get the same repair.
func fixRollovers(f *File) {
	for _, ch := range f.Channels {
		repairRollover(ch.Times)
		if ch.ShortName == "time" {
			repairRollover(ch.Data)
		}
	}
}

// repairRollover adds a day to every sample from each point where the raw
// sequence stops increasing. Wraps accumulate, so a recording spanning two
// midnights gains two days at its tail. Comparison is on the raw values: a
// stalled clock counts as a wrap, matching the recorder's own readers.
func repairRollover(vals []float64) {
	if len(vals) < 2 {
		return
	}
	var offset float64
	prev := vals[0]
	for i := 1; i < len(vals); i++ {
		raw := vals[i]
		if raw-prev <= 0 {
			offset += secondsPerDay
		}
		vals[i] = raw + offset
		prev = raw
	}
}
