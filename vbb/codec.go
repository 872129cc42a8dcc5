package vbb

import (
	"encoding/binary"
	"math"
	"time"
)

// maxStringLen guards 7-bit string lengths against corrupt files.
const maxStringLen = 16 << 20

// dotNETEpoch is 0001-01-01 00:00:00 UTC, the zero point of v2 tick
// counts.
var dotNETEpoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// codec decodes VBB primitives honoring the header's byte order. It reads
// through the chunked source so error offsets are absolute file positions.
type codec struct {
	src       *chunkedSource
	version   uint8
	bigEndian bool
	utc       bool
}

func (c *codec) order() binary.ByteOrder {
	if c.bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// read returns exactly n bytes or a format error at the current offset.
func (c *codec) read(n int) ([]byte, error) {
	off := c.src.Offset()
	data, _, err := c.src.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	if len(data) < n {
		return nil, formatErrorf(off, "need %d bytes, file ends after %d", n, len(data))
	}
	return data, nil
}

func (c *codec) readByte() (byte, error) {
	b, err := c.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *codec) readU16() (uint16, error) {
	b, err := c.read(2)
	if err != nil {
		return 0, err
	}
	return c.order().Uint16(b), nil
}

func (c *codec) readU32() (uint32, error) {
	b, err := c.read(4)
	if err != nil {
		return 0, err
	}
	return c.order().Uint32(b), nil
}

func (c *codec) readU64() (uint64, error) {
	b, err := c.read(8)
	if err != nil {
		return 0, err
	}
	return c.order().Uint64(b), nil
}

func (c *codec) readF32() (float32, error) {
	v, err := c.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (c *codec) readF64() (float64, error) {
	v, err := c.readU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// read7BitInt decodes the variable-length integer: seven payload bits per
// byte, high bit as continuation flag. Big-endian files accumulate the
// most significant group first, little-endian files the least significant
// first.
func (c *codec) read7BitInt() (uint64, error) {
	off := c.src.Offset()
	var v uint64
	for i := 0; ; i++ {
		if i == 10 {
			return 0, formatErrorf(off, "7-bit integer longer than 10 bytes")
		}
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		if c.bigEndian {
			v = v<<7 | uint64(b&0x7F)
		} else {
			v |= uint64(b&0x7F) << (7 * i)
		}
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// readString decodes a 7-bit length-prefixed string. Little-endian files
// store the bytes reversed.
func (c *codec) readString() (string, error) {
	off := c.src.Offset()
	n, err := c.read7BitInt()
	if err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", formatErrorf(off, "string length %d exceeds limit", n)
	}
	raw, err := c.read(int(n))
	if err != nil {
		return "", err
	}
	if c.bigEndian || len(raw) < 2 {
		return string(raw), nil
	}
	rev := make([]byte, len(raw))
	for i, b := range raw {
		rev[len(raw)-1-i] = b
	}
	return string(rev), nil
}

// readByteArray decodes a 7-bit length-prefixed blob. Unlike strings the
// bytes are never reversed.
func (c *codec) readByteArray() ([]byte, error) {
	off := c.src.Offset()
	n, err := c.read7BitInt()
	if err != nil {
		return nil, err
	}
	if n > maxStringLen {
		return nil, formatErrorf(off, "byte array length %d exceeds limit", n)
	}
	raw, err := c.read(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (c *codec) readDateTime() (DateTime, error) {
	if c.version >= 2 {
		return c.readDateTimeV2()
	}
	return c.readDateTimeV1()
}

// readDateTimeV1 decodes the calendar-field layout: u16 year, one byte
// each for month through second, one pad byte. The zone kind follows the
// header's UTC flag.
func (c *codec) readDateTimeV1() (DateTime, error) {
	b, err := c.read(8)
	if err != nil {
		return DateTime{}, err
	}
	kind, loc := TimeKindLocal, time.Local
	if c.utc {
		kind, loc = TimeKindUTC, time.UTC
	}
	t := time.Date(
		int(c.order().Uint16(b[0:2])), time.Month(b[2]), int(b[3]),
		int(b[4]), int(b[5]), int(b[6]), 0, loc,
	)
	return DateTime{Time: t, Kind: kind}, nil
}

// readDateTimeV2 decodes the packed 64-bit layout: top two bits kind (00
// UTC, 10 local, otherwise unspecified), low 62 bits 100ns ticks since
// 0001-01-01. Whole days come from integer division; hour, minute and
// second are rebuilt from the remainder.
func (c *codec) readDateTimeV2() (DateTime, error) {
	v, err := c.readU64()
	if err != nil {
		return DateTime{}, err
	}
	kind, loc := TimeKindUnspecified, time.UTC
	switch v >> 62 {
	case 0:
		kind = TimeKindUTC
	case 2:
		kind, loc = TimeKindLocal, time.Local
	}
	secs := int64((v & (1<<62 - 1)) / 10_000_000)
	day := dotNETEpoch.AddDate(0, 0, int(secs/86400))
	rem := int(secs % 86400)
	t := time.Date(day.Year(), day.Month(), day.Day(), rem/3600, rem%3600/60, rem%60, 0, loc)
	return DateTime{Time: t, Kind: kind}, nil
}

// readValue decodes one typed value as stored in dictionary items and
// binary dumps.
func (c *codec) readValue(t ValueType) (any, error) {
	switch t {
	case TypeNone:
		return nil, nil
	case TypeU8:
		return c.readByte()
	case TypeU16:
		return c.readU16()
	case TypeS16:
		v, err := c.readU16()
		return int16(v), err
	case TypeU32:
		return c.readU32()
	case TypeS32:
		v, err := c.readU32()
		return int32(v), err
	case TypeU64:
		return c.readU64()
	case TypeS64:
		v, err := c.readU64()
		return int64(v), err
	case TypeF32:
		return c.readF32()
	case TypeF64:
		return c.readF64()
	case TypeTime:
		v, err := c.readU32()
		return int32(v), err
	case TypeDateTime:
		return c.readDateTime()
	case TypeString:
		return c.readString()
	case TypeByteArray:
		return c.readByteArray()
	}
	return nil, formatErrorf(c.src.Offset(), "value type %d has no decoding", t)
}

// decodeScalar reinterprets one fixed-width sample field and widens it to
// float64. Layout building guarantees t has a width, so the fallthrough is
// unreachable.
func decodeScalar(b []byte, t ValueType, order binary.ByteOrder) float64 {
	switch t {
	case TypeU8:
		return float64(b[0])
	case TypeU16:
		return float64(order.Uint16(b))
	case TypeS16:
		return float64(int16(order.Uint16(b)))
	case TypeU32:
		return float64(order.Uint32(b))
	case TypeS32:
		return float64(int32(order.Uint32(b)))
	case TypeU64:
		return float64(order.Uint64(b))
	case TypeS64:
		return float64(int64(order.Uint64(b)))
	case TypeF32:
		return float64(math.Float32frombits(order.Uint32(b)))
	case TypeF64:
		return math.Float64frombits(order.Uint64(b))
	case TypeTime:
		return float64(int32(order.Uint32(b)))
	}
	return math.NaN()
}

// canonicalScale snaps stored scales to the two standard factors that
// drift in files written by older firmware.
func canonicalScale(s float64) float64 {
	if math.Round(s*1000)/1000 == 0.001 {
		return 0.001
	}
	if math.Round(s*10)/10 == 3.6 {
		return 3.6
	}
	return s
}
