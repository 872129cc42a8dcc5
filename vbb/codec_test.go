package vbb

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func newTestCodec(t *testing.T, raw []byte, bigEndian bool, version byte, utc bool) *codec {
	t.Helper()
	src, err := openSource(writeTempBytes(t, raw), 32)
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { test.That(t, src.Close(), test.ShouldBeNil) })
	src.SetBufferZone(0)
	return &codec{src: src, version: version, bigEndian: bigEndian, utc: utc}
}

func Test7BitInt(t *testing.T) {
	t.Run("big endian accumulates most significant first", func(t *testing.T) {
		c := newTestCodec(t, []byte{0x81, 0x00}, true, 2, true)
		v, err := c.read7BitInt()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, 128)
	})
	t.Run("little endian accumulates least significant first", func(t *testing.T) {
		c := newTestCodec(t, []byte{0x81, 0x01}, false, 2, true)
		v, err := c.read7BitInt()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, 129)
	})
	t.Run("single byte", func(t *testing.T) {
		for _, bigEndian := range []bool{true, false} {
			c := newTestCodec(t, []byte{0x05}, bigEndian, 2, true)
			v, err := c.read7BitInt()
			test.That(t, err, test.ShouldBeNil)
			test.That(t, v, test.ShouldEqual, 5)
		}
	})
	t.Run("unterminated integer fails", func(t *testing.T) {
		raw := make([]byte, 12)
		for i := range raw {
			raw[i] = 0x80
		}
		c := newTestCodec(t, raw, false, 2, true)
		_, err := c.read7BitInt()
		test.That(t, IsFormatError(err), test.ShouldBeTrue)
	})
	t.Run("truncated integer fails", func(t *testing.T) {
		c := newTestCodec(t, []byte{0x81}, true, 2, true)
		_, err := c.read7BitInt()
		test.That(t, IsFormatError(err), test.ShouldBeTrue)
	})
}

func TestReadString(t *testing.T) {
	t.Run("little endian files store bytes reversed", func(t *testing.T) {
		b := newFileBuilder(2, false)
		b.str("speed")
		test.That(t, b.bytes()[1], test.ShouldEqual, byte('d'))
		c := newTestCodec(t, b.bytes(), false, 2, true)
		s, err := c.readString()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s, test.ShouldEqual, "speed")
	})
	t.Run("big endian files store bytes in order", func(t *testing.T) {
		b := newFileBuilder(2, true)
		b.str("speed")
		test.That(t, b.bytes()[1], test.ShouldEqual, byte('s'))
		c := newTestCodec(t, b.bytes(), true, 2, true)
		s, err := c.readString()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s, test.ShouldEqual, "speed")
	})
	t.Run("empty string", func(t *testing.T) {
		c := newTestCodec(t, []byte{0x00}, false, 2, true)
		s, err := c.readString()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s, test.ShouldEqual, "")
	})
	t.Run("absurd length rejected", func(t *testing.T) {
		b := newFileBuilder(2, false)
		b.write7Bit(1 << 30)
		c := newTestCodec(t, b.bytes(), false, 2, true)
		_, err := c.readString()
		test.That(t, IsFormatError(err), test.ShouldBeTrue)
	})
}

func TestReadByteArrayNotReversed(t *testing.T) {
	b := newFileBuilder(2, false)
	b.write7Bit(4)
	b.raw(1, 2, 3, 4)
	c := newTestCodec(t, b.bytes(), false, 2, true)
	got, err := c.readByteArray()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, []byte{1, 2, 3, 4})
}

func TestDateTimeV1(t *testing.T) {
	when := time.Date(2024, time.March, 1, 10, 30, 45, 0, time.UTC)
	for _, tc := range []struct {
		name string
		utc  bool
		kind TimeKind
	}{
		{"utc flag set", true, TimeKindUTC},
		{"utc flag clear", false, TimeKindLocal},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := newFileBuilder(1, false)
			b.dateTime(when)
			test.That(t, b.len(), test.ShouldEqual, 8)
			c := newTestCodec(t, b.bytes(), false, 1, tc.utc)
			dt, err := c.readDateTime()
			test.That(t, err, test.ShouldBeNil)
			test.That(t, dt.Kind, test.ShouldEqual, tc.kind)
			test.That(t, dt.Time.Year(), test.ShouldEqual, 2024)
			test.That(t, dt.Time.Month(), test.ShouldEqual, time.March)
			test.That(t, dt.Time.Day(), test.ShouldEqual, 1)
			test.That(t, dt.Time.Hour(), test.ShouldEqual, 10)
			test.That(t, dt.Time.Minute(), test.ShouldEqual, 30)
			test.That(t, dt.Time.Second(), test.ShouldEqual, 45)
		})
	}
}

func TestDateTimeV2(t *testing.T) {
	when := time.Date(2024, time.March, 1, 10, 30, 45, 0, time.UTC)
	for _, tc := range []struct {
		name string
		bits uint64
		kind TimeKind
	}{
		{"kind 00 is utc", 0, TimeKindUTC},
		{"kind 10 is local", 2 << 62, TimeKindLocal},
		{"kind 01 is unspecified", 1 << 62, TimeKindUnspecified},
		{"kind 11 is unspecified", 3 << 62, TimeKindUnspecified},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := newFileBuilder(2, false)
			b.u64(v2Ticks(when) | tc.bits)
			c := newTestCodec(t, b.bytes(), false, 2, true)
			dt, err := c.readDateTime()
			test.That(t, err, test.ShouldBeNil)
			test.That(t, dt.Kind, test.ShouldEqual, tc.kind)
			test.That(t, dt.Time.Year(), test.ShouldEqual, 2024)
			test.That(t, dt.Time.Month(), test.ShouldEqual, time.March)
			test.That(t, dt.Time.Day(), test.ShouldEqual, 1)
			test.That(t, dt.Time.Hour(), test.ShouldEqual, 10)
			test.That(t, dt.Time.Minute(), test.ShouldEqual, 30)
			test.That(t, dt.Time.Second(), test.ShouldEqual, 45)
		})
	}
}

func TestValueTypeMapping(t *testing.T) {
	for b := byte(0); b <= 13; b++ {
		vt, ok := valueTypeFromByte(b)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, vt.String(), test.ShouldNotEqual, "invalid")
	}
	_, ok := valueTypeFromByte(14)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = valueTypeFromByte(0xFF)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestReadValue(t *testing.T) {
	t.Run("numerics", func(t *testing.T) {
		b := newFileBuilder(2, false)
		b.raw(200)
		b.u16(65000)
		b.u16(uint16(int16(-123)))
		b.u32(uint32(int32(-70000)))
		b.f64(2.5)
		b.u32(86399)
		c := newTestCodec(t, b.bytes(), false, 2, true)

		v, err := c.readValue(TypeU8)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, uint8(200))

		v, err = c.readValue(TypeU16)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, uint16(65000))

		v, err = c.readValue(TypeS16)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, int16(-123))

		v, err = c.readValue(TypeS32)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, int32(-70000))

		v, err = c.readValue(TypeF64)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, 2.5)

		v, err = c.readValue(TypeTime)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, int32(86399))
	})
	t.Run("none decodes to nil without consuming", func(t *testing.T) {
		c := newTestCodec(t, []byte{0xAA}, false, 2, true)
		v, err := c.readValue(TypeNone)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldBeNil)
		test.That(t, c.src.Offset(), test.ShouldEqual, 0)
	})
	t.Run("string value", func(t *testing.T) {
		b := newFileBuilder(2, false)
		b.str("VB3i")
		c := newTestCodec(t, b.bytes(), false, 2, true)
		v, err := c.readValue(TypeString)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, "VB3i")
	})
}

func TestDecodeScalar(t *testing.T) {
	for _, tc := range []struct {
		name string
		vt   ValueType
		enc  func(b *fileBuilder)
		want float64
	}{
		{"u8", TypeU8, func(b *fileBuilder) { b.raw(250) }, 250},
		{"u16", TypeU16, func(b *fileBuilder) { b.u16(65535) }, 65535},
		{"s16", TypeS16, func(b *fileBuilder) { b.u16(uint16(int16(-2))) }, -2},
		{"u32", TypeU32, func(b *fileBuilder) { b.u32(4000000000) }, 4000000000},
		{"s32", TypeS32, func(b *fileBuilder) { b.u32(uint32(int32(-123456))) }, -123456},
		{"u64", TypeU64, func(b *fileBuilder) { b.u64(1 << 40) }, float64(uint64(1) << 40)},
		{"s64", TypeS64, func(b *fileBuilder) { b.u64(uint64(int64(-5))) }, -5},
		{"f32", TypeF32, func(b *fileBuilder) { b.f32(1.5) }, 1.5},
		{"f64", TypeF64, func(b *fileBuilder) { b.f64(-0.25) }, -0.25},
		{"time", TypeTime, func(b *fileBuilder) { b.u32(uint32(int32(-7200))) }, -7200},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for _, bigEndian := range []bool{false, true} {
				b := newFileBuilder(2, bigEndian)
				tc.enc(b)
				got := decodeScalar(b.bytes(), tc.vt, b.order())
				test.That(t, got, test.ShouldEqual, tc.want)
			}
		})
	}
}

func TestCanonicalScale(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want float64
	}{
		{0.001, 0.001},
		{0.0010000004, 0.001},
		{0.0012, 0.001},
		{3.6, 3.6},
		{3.5999998, 3.6},
		{3.62, 3.6},
		{7.2, 7.2},
		{0.01, 0.01},
		{0, 0},
	} {
		test.That(t, canonicalScale(tc.in), test.ShouldEqual, tc.want)
	}
}
