package vbb

import (
	"encoding/binary"
)

// instanceIndex records the chunk-relative start offsets of sample
// records, per channel group, for the current chunk only. It must be
// flushed before every chunk load.
type instanceIndex map[uint8][]int

// extractor turns indexed sample records into per-channel (time, value)
// pairs. The scratch buffers are reused across flushes to keep the
// per-chunk loop allocation-light.
type extractor struct {
	src     *chunkedSource
	order   binary.ByteOrder
	scratch []byte
	times   []float64
}

// flush decodes every indexed instance into the member channels and
// clears the index.
func (e *extractor) flush(layouts map[uint8]*groupLayout, idx instanceIndex) {
	for groupID, starts := range idx {
		if len(starts) == 0 {
			continue
		}
		e.flushGroup(layouts[groupID], starts)
		idx[groupID] = starts[:0]
	}
}

// flushGroup gathers one group's records into a contiguous matrix, then
// decodes the shared timestamp column and every channel column from it.
func (e *extractor) flushGroup(gl *groupLayout, starts []int) {
	recLen := gl.recordLen
	need := recLen * len(starts)
	if cap(e.scratch) < need {
		e.scratch = make([]byte, need)
	}
	buf := e.scratch[:need]
	for i, start := range starts {
		copy(buf[i*recLen:(i+1)*recLen], e.src.bytesAt(start, start+recLen))
	}

	if cap(e.times) < len(starts) {
		e.times = make([]float64, len(starts))
	}
	times := e.times[:len(starts)]
	for i := range starts {
		// Timestamp bytes sit right after the tag, in 100us ticks.
		ticks := e.order.Uint32(buf[i*recLen+1 : i*recLen+5])
		times[i] = float64(ticks) * 1e-4
	}

	for _, fl := range gl.fields {
		ch := fl.channel
		scale, offset := ch.Scale, ch.Offset
		for i := range starts {
			rec := buf[i*recLen : (i+1)*recLen]
			v := decodeScalar(rec[fl.start:fl.end], ch.Type, e.order)
			ch.Times = append(ch.Times, times[i])
			ch.Data = append(ch.Data, v*scale+offset)
		}
	}
}

// scanSamples drives the post-definition phase: index sample records,
// flush whenever the source nears a chunk boundary, and hand interleaved
// definition records back to the parser. Pending instances are flushed
// before any error return so the aggregate holds everything fully decoded
// before the failure.
func (d *decoder) scanSamples() error {
	src := d.parser.codec.src
	idx := make(instanceIndex, len(d.layouts))
	ext := &extractor{src: src, order: d.parser.codec.order()}

	for {
		off := src.Offset()
		b, nearEnd, err := src.ReadBytes(1)
		if err != nil {
			ext.flush(d.layouts, idx)
			return err
		}
		if nearEnd {
			src.Advance(-len(b))
			ext.flush(d.layouts, idx)
			eof, err := src.LoadNextChunk()
			if err != nil {
				return err
			}
			if eof {
				return nil
			}
			d.reportProgress()
			continue
		}
		if len(b) == 0 {
			ext.flush(d.layouts, idx)
			return nil
		}
		tag := b[0]
		if tag != tagSample {
			if err := d.parser.parseRecord(tag, off); err != nil {
				ext.flush(d.layouts, idx)
				return err
			}
			continue
		}

		rest, _, err := src.ReadBytes(sampleOverhead - 1)
		if err != nil {
			ext.flush(d.layouts, idx)
			return err
		}
		if len(rest) < sampleOverhead-1 {
			ext.flush(d.layouts, idx)
			return formatErrorf(off, "truncated sample record")
		}
		groupID := rest[4]
		gl, ok := d.layouts[groupID]
		if !ok {
			ext.flush(d.layouts, idx)
			return formatErrorf(off+5, "sample references unknown channel group %d", groupID)
		}
		idx[groupID] = append(idx[groupID], src.ChunkPos()-sampleOverhead)
		if _, _, clamped := src.Advance(gl.recordLen - sampleOverhead); clamped {
			// The payload runs past the end of the file; the record never
			// completed, so it cannot be extracted.
			idx[groupID] = idx[groupID][:len(idx[groupID])-1]
			ext.flush(d.layouts, idx)
			return formatErrorf(off, "truncated sample record")
		}
	}
}
