package vbb

// sampleOverhead counts the non-payload bytes of a sample record: one tag
// byte, four timestamp bytes, one group id byte.
const sampleOverhead = 6

// fieldLayout locates one channel's value inside its group's sample
// records.
type fieldLayout struct {
	channel *Channel
	start   int
	end     int
}

// groupLayout is the byte layout of one channel group's sample records.
// Layouts are immutable once built.
type groupLayout struct {
	groupID   uint8
	recordLen int
	fields    []fieldLayout
}

// buildLayouts resolves every channel group against the channel table and
// computes member field offsets. It runs once, after all definitions
// preceding the first sample record have been parsed; at is the file
// offset where sample data begins, used for error reporting. The second
// return is the longest record length across groups.
func buildLayouts(f *File, at int64) (map[uint8]*groupLayout, int, error) {
	layouts := make(map[uint8]*groupLayout, len(f.ChannelGroups))
	maxLen := 0
	for _, cg := range f.ChannelGroups {
		gl := &groupLayout{groupID: cg.GroupID, recordLen: sampleOverhead}
		for _, id := range cg.ChannelIDs {
			ch, ok := f.ChannelByID(id)
			if !ok {
				return nil, 0, formatErrorf(at, "channel group %d references undefined channel %d", cg.GroupID, id)
			}
			w, ok := ch.Type.width()
			if !ok {
				return nil, 0, formatErrorf(at, "channel %q has type %s, which cannot appear in sample records", ch.ShortName, ch.Type)
			}
			gl.fields = append(gl.fields, fieldLayout{
				channel: ch,
				start:   gl.recordLen,
				end:     gl.recordLen + w,
			})
			gl.recordLen += w
		}
		layouts[cg.GroupID] = gl
		if gl.recordLen > maxLen {
			maxLen = gl.recordLen
		}
	}
	return layouts, maxLen, nil
}
