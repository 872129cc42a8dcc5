package vbb

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fileBuilder assembles synthetic VBB byte streams for tests, honoring the
// endianness rules the codec must undo.
type fileBuilder struct {
	buf       bytes.Buffer
	version   byte
	bigEndian bool
	utc       bool
}

func newFileBuilder(version byte, bigEndian bool) *fileBuilder {
	return &fileBuilder{version: version, bigEndian: bigEndian, utc: true}
}

func (b *fileBuilder) order() binary.ByteOrder {
	if b.bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (b *fileBuilder) len() int {
	return b.buf.Len()
}

func (b *fileBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func (b *fileBuilder) raw(data ...byte) *fileBuilder {
	b.buf.Write(data)
	return b
}

func (b *fileBuilder) u16(v uint16) *fileBuilder {
	var tmp [2]byte
	b.order().PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *fileBuilder) u32(v uint32) *fileBuilder {
	var tmp [4]byte
	b.order().PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *fileBuilder) u64(v uint64) *fileBuilder {
	var tmp [8]byte
	b.order().PutUint64(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *fileBuilder) f32(v float32) *fileBuilder {
	return b.u32(math.Float32bits(v))
}

func (b *fileBuilder) f64(v float64) *fileBuilder {
	return b.u64(math.Float64bits(v))
}

func (b *fileBuilder) write7Bit(v uint64) *fileBuilder {
	if b.bigEndian {
		groups := []byte{byte(v & 0x7F)}
		for v >>= 7; v != 0; v >>= 7 {
			groups = append(groups, byte(v&0x7F))
		}
		for i := len(groups) - 1; i >= 0; i-- {
			g := groups[i]
			if i > 0 {
				g |= 0x80
			}
			b.buf.WriteByte(g)
		}
		return b
	}
	for {
		g := byte(v & 0x7F)
		if v >>= 7; v != 0 {
			b.buf.WriteByte(g | 0x80)
		} else {
			b.buf.WriteByte(g)
			return b
		}
	}
}

func (b *fileBuilder) str(s string) *fileBuilder {
	b.write7Bit(uint64(len(s)))
	if b.bigEndian {
		b.buf.WriteString(s)
		return b
	}
	for i := len(s) - 1; i >= 0; i-- {
		b.buf.WriteByte(s[i])
	}
	return b
}

func v2Ticks(t time.Time) uint64 {
	return uint64(t.Unix()-dotNETEpoch.Unix()) * 10_000_000
}

func (b *fileBuilder) dateTime(t time.Time) *fileBuilder {
	if b.version >= 2 {
		return b.u64(v2Ticks(t))
	}
	b.u16(uint16(t.Year()))
	return b.raw(byte(t.Month()), byte(t.Day()), byte(t.Hour()), byte(t.Minute()), byte(t.Second()), 0)
}

func (b *fileBuilder) header(created, modified time.Time) *fileBuilder {
	b.buf.WriteString("VBB")
	b.buf.WriteByte(b.version)
	var flags byte
	if b.bigEndian {
		flags |= 0x1
	}
	if b.utc {
		flags |= 0x2
	}
	b.raw(flags, 0, 0, 0)
	return b.dateTime(created).dateTime(modified)
}

func (b *fileBuilder) group(id byte, name string) *fileBuilder {
	b.buf.WriteByte(tagGroup)
	b.buf.WriteByte(id)
	return b.str(name)
}

func (b *fileBuilder) dictionaryString(groupID byte, name, value string) *fileBuilder {
	b.buf.WriteByte(tagDictionary)
	b.buf.WriteByte(groupID)
	b.str(name)
	b.buf.WriteByte(byte(TypeString))
	return b.str(value)
}

func (b *fileBuilder) dictionaryU32(groupID byte, name string, value uint32) *fileBuilder {
	b.buf.WriteByte(tagDictionary)
	b.buf.WriteByte(groupID)
	b.str(name)
	b.buf.WriteByte(byte(TypeU32))
	return b.u32(value)
}

func (b *fileBuilder) channel(id uint16, groupID byte, short, units string, vt ValueType, scale, offset float64) *fileBuilder {
	b.buf.WriteByte(tagChannel)
	b.u16(id)
	b.buf.WriteByte(groupID)
	b.str(short)
	b.str(short + " (full)")
	b.str(units)
	b.buf.WriteByte(byte(vt))
	b.f64(scale)
	b.f64(offset)
	return b.str("")
}

func (b *fileBuilder) channelGroup(groupID byte, ids ...uint16) *fileBuilder {
	b.buf.WriteByte(tagChannelGroup)
	b.buf.WriteByte(groupID)
	b.buf.WriteByte(byte(len(ids)))
	for _, id := range ids {
		b.u16(id)
	}
	return b
}

func (b *fileBuilder) binaryDump(blockType uint16, name string, payload []byte) *fileBuilder {
	b.buf.WriteByte(tagBinaryDump)
	b.u16(blockType)
	b.str(name)
	b.buf.WriteByte(byte(TypeByteArray))
	b.write7Bit(uint64(len(payload)))
	b.buf.Write(payload)
	return b
}

// sample opens a sample record; the caller appends the payload with the
// numeric writers.
func (b *fileBuilder) sample(groupID byte, ticks uint32) *fileBuilder {
	b.buf.WriteByte(tagSample)
	b.u32(ticks)
	b.buf.WriteByte(groupID)
	return b
}

func (b *fileBuilder) writeTemp(t *testing.T) string {
	t.Helper()
	return writeTempBytes(t, b.bytes())
}

func writeTempBytes(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.vbb")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

var fixtureCreated = time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)

// buildTelemetry returns a builder with one channel group holding a f32
// speed channel (scale 0.01) and a u16 rpm channel, sampled together every
// 10ms for n samples. Speed raw values count up by 100 from 0, rpm by 3
// from 900.
func buildTelemetry(version byte, bigEndian bool, n int) *fileBuilder {
	b := newFileBuilder(version, bigEndian)
	b.header(fixtureCreated, fixtureCreated.Add(time.Minute))
	b.group(1, "gps")
	b.dictionaryString(1, "serial", "VB3i-0042")
	b.dictionaryU32(1, "sample rate", 100)
	b.channel(1, 1, "speed", "km/h", TypeF32, 0.01, 0)
	b.channel(2, 1, "rpm", "1/min", TypeU16, 1, 0)
	b.channelGroup(1, 1, 2)
	b.binaryDump(7, "cal", []byte{0xDE, 0xAD, 0xBE, 0xEF})
	for i := 0; i < n; i++ {
		b.sample(1, uint32(i*100))
		b.f32(float32(i * 100))
		b.u16(uint16(900 + 3*i))
	}
	return b
}
