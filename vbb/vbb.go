package vbb

import "time"

// ValueType identifies the on-disk encoding of a dictionary value, dump
// value or channel sample.
type ValueType uint8

// Value types as stored in the file.
const (
	TypeNone ValueType = iota
	TypeU8
	TypeU16
	TypeS16
	TypeU32
	TypeS32
	TypeU64
	TypeS64
	TypeF32
	TypeF64
	TypeTime
	TypeDateTime
	TypeString
	TypeByteArray
)

func valueTypeFromByte(b byte) (ValueType, bool) {
	if b > byte(TypeByteArray) {
		return TypeNone, false
	}
	return ValueType(b), true
}

func (t ValueType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeU8:
		return "u8"
	case TypeU16:
		return "u16"
	case TypeS16:
		return "s16"
	case TypeU32:
		return "u32"
	case TypeS32:
		return "s32"
	case TypeU64:
		return "u64"
	case TypeS64:
		return "s64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	case TypeTime:
		return "time"
	case TypeDateTime:
		return "datetime"
	case TypeString:
		return "string"
	case TypeByteArray:
		return "bytes"
	}
	return "invalid"
}

// width returns the sample-record byte width of the type. Only fixed-width
// numeric types (and Time) may appear in channel groups.
func (t ValueType) width() (int, bool) {
	switch t {
	case TypeU8:
		return 1, true
	case TypeU16, TypeS16:
		return 2, true
	case TypeU32, TypeS32, TypeF32, TypeTime:
		return 4, true
	case TypeU64, TypeS64, TypeF64:
		return 8, true
	}
	return 0, false
}

// TimeKind says how a DateTime's zone should be interpreted.
type TimeKind uint8

// Time kinds.
const (
	TimeKindUTC TimeKind = iota
	TimeKindLocal
	TimeKindUnspecified
)

func (k TimeKind) String() string {
	switch k {
	case TimeKindUTC:
		return "utc"
	case TimeKindLocal:
		return "local"
	}
	return "unspecified"
}

// DateTime is a calendar timestamp embedded in the file.
type DateTime struct {
	Time time.Time
	Kind TimeKind
}

// Header holds the fixed file preamble. It is immutable once the header
// phase completes.
type Header struct {
	Version   uint8
	BigEndian bool
	UTC       bool
	Created   DateTime
	Modified  DateTime
}

// Group is a named logical grouping for dictionary items and channels.
type Group struct {
	ID   uint8
	Name string
}

// DictionaryItem is a single typed metadata entry.
type DictionaryItem struct {
	GroupID uint8
	Name    string
	Type    ValueType
	Value   any
}

// BinaryDump is an opaque named blob with a block type, typically firmware
// or configuration payloads.
type BinaryDump struct {
	BlockType uint16
	Name      string
	Type      ValueType
	Value     any
}

// Channel is one decoded telemetry signal. Times holds seconds since
// midnight (rollover corrected) and Data the scaled sample values; the two
// always have equal length.
type Channel struct {
	ID        uint16
	GroupID   uint8
	ShortName string
	LongName  string
	Units     string
	Type      ValueType
	Scale     float64
	Offset    float64
	Metadata  string

	Times []float64
	Data  []float64
}

// ChannelGroup lists the channels whose values appear, in order, in one
// sample record.
type ChannelGroup struct {
	GroupID    uint8
	ChannelIDs []uint16
}

// File is the decoded aggregate for one VBB log.
type File struct {
	Header        Header
	Groups        []Group
	Dictionary    []DictionaryItem
	Channels      []*Channel
	ChannelGroups []ChannelGroup
	Dumps         []BinaryDump

	channelByID map[uint16]*Channel
}

// addChannel registers a channel definition. A redefinition of an existing
// ID replaces the earlier one in place.
func (f *File) addChannel(ch *Channel) {
	if f.channelByID == nil {
		f.channelByID = map[uint16]*Channel{}
	}
	if prev, ok := f.channelByID[ch.ID]; ok {
		for i, c := range f.Channels {
			if c == prev {
				f.Channels[i] = ch
				break
			}
		}
	} else {
		f.Channels = append(f.Channels, ch)
	}
	f.channelByID[ch.ID] = ch
}

// ChannelByID looks a channel up by its wire ID.
func (f *File) ChannelByID(id uint16) (*Channel, bool) {
	ch, ok := f.channelByID[id]
	return ch, ok
}

// ChannelByName returns the first channel whose short name matches.
func (f *File) ChannelByName(name string) (*Channel, bool) {
	for _, ch := range f.Channels {
		if ch.ShortName == name {
			return ch, true
		}
	}
	return nil, false
}

// SampleCount sums decoded samples across all channels.
func (f *File) SampleCount() int {
	n := 0
	for _, ch := range f.Channels {
		n += len(ch.Data)
	}
	return n
}
