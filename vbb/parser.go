package vbb

import (
	"github.com/go-vbox/vbb/logging"
)

// Record tags.
const (
	tagGroup        = 5
	tagDictionary   = 6
	tagChannel      = 7
	tagChannelGroup = 8
	tagSample       = 9
	tagBinaryDump   = 13
)

// recordParser consumes the header and definition records. It runs the
// whole pre-sample phase and is called back for definition records that
// appear between samples later in the file.
type recordParser struct {
	codec  *codec
	file   *File
	logger logging.Logger
}

// parseHeader reads magic, version, flags and the two file datetimes, and
// locks the codec's byte order for everything after.
func (p *recordParser) parseHeader() error {
	off := p.codec.src.Offset()
	b, err := p.codec.read(8)
	if err != nil {
		return err
	}
	if b[0] != 'V' || b[1] != 'B' || b[2] != 'B' {
		return formatErrorf(off, "bad magic % x", b[:3])
	}
	version := b[3]
	if version != 1 && version != 2 {
		return formatErrorf(off+3, "unsupported version %d", version)
	}
	// Flag bits live in the first of the four flag bytes, so their
	// interpretation does not depend on the byte order they select.
	flags := b[4]
	p.codec.version = version
	p.codec.bigEndian = flags&0x1 != 0
	p.codec.utc = flags&0x2 != 0

	created, err := p.codec.readDateTime()
	if err != nil {
		return err
	}
	modified, err := p.codec.readDateTime()
	if err != nil {
		return err
	}
	p.file.Header = Header{
		Version:   version,
		BigEndian: p.codec.bigEndian,
		UTC:       p.codec.utc,
		Created:   created,
		Modified:  modified,
	}
	return nil
}

// parseUntilSamples consumes definition records until the first sample
// tag, which it leaves unconsumed. A file that ends first is truncated.
func (p *recordParser) parseUntilSamples() error {
	for {
		off := p.codec.src.Offset()
		b, _, err := p.codec.src.ReadBytes(1)
		if err != nil {
			return err
		}
		if len(b) == 0 {
			return formatErrorf(off, "file ends before any sample record")
		}
		if b[0] == tagSample {
			p.codec.src.Advance(-1)
			return nil
		}
		if err := p.parseRecord(b[0], off); err != nil {
			return err
		}
	}
}

// parseRecord dispatches one definition record whose tag byte was already
// consumed at offset off.
func (p *recordParser) parseRecord(tag byte, off int64) error {
	switch tag {
	case tagGroup:
		return p.parseGroup()
	case tagDictionary:
		return p.parseDictionaryItem()
	case tagChannel:
		return p.parseChannel()
	case tagChannelGroup:
		return p.parseChannelGroup()
	case tagBinaryDump:
		return p.parseBinaryDump()
	}
	return formatErrorf(off, "unknown record tag %d", tag)
}

func (p *recordParser) parseGroup() error {
	id, err := p.codec.readByte()
	if err != nil {
		return err
	}
	name, err := p.codec.readString()
	if err != nil {
		return err
	}
	p.file.Groups = append(p.file.Groups, Group{ID: id, Name: name})
	p.logger.Debugw("group", "id", id, "name", name)
	return nil
}

func (p *recordParser) parseDictionaryItem() error {
	groupID, err := p.codec.readByte()
	if err != nil {
		return err
	}
	name, err := p.codec.readString()
	if err != nil {
		return err
	}
	vt, err := p.readValueType()
	if err != nil {
		return err
	}
	value, err := p.codec.readValue(vt)
	if err != nil {
		return err
	}
	p.file.Dictionary = append(p.file.Dictionary, DictionaryItem{
		GroupID: groupID,
		Name:    name,
		Type:    vt,
		Value:   value,
	})
	p.logger.Debugw("dictionary item", "group", groupID, "name", name, "type", vt)
	return nil
}

func (p *recordParser) parseChannel() error {
	id, err := p.codec.readU16()
	if err != nil {
		return err
	}
	groupID, err := p.codec.readByte()
	if err != nil {
		return err
	}
	short, err := p.codec.readString()
	if err != nil {
		return err
	}
	long, err := p.codec.readString()
	if err != nil {
		return err
	}
	units, err := p.codec.readString()
	if err != nil {
		return err
	}
	vt, err := p.readValueType()
	if err != nil {
		return err
	}
	scale, err := p.codec.readF64()
	if err != nil {
		return err
	}
	offset, err := p.codec.readF64()
	if err != nil {
		return err
	}
	meta, err := p.codec.readString()
	if err != nil {
		return err
	}
	ch := &Channel{
		ID:        id,
		GroupID:   groupID,
		ShortName: short,
		LongName:  long,
		Units:     units,
		Type:      vt,
		Scale:     canonicalScale(scale),
		Offset:    offset,
		Metadata:  meta,
	}
	p.file.addChannel(ch)
	p.logger.Debugw("channel", "id", id, "name", short, "type", vt, "scale", ch.Scale, "offset", offset)
	return nil
}

func (p *recordParser) parseChannelGroup() error {
	groupID, err := p.codec.readByte()
	if err != nil {
		return err
	}
	count, err := p.codec.readByte()
	if err != nil {
		return err
	}
	ids := make([]uint16, count)
	for i := range ids {
		if ids[i], err = p.codec.readU16(); err != nil {
			return err
		}
	}
	p.file.ChannelGroups = append(p.file.ChannelGroups, ChannelGroup{GroupID: groupID, ChannelIDs: ids})
	p.logger.Debugw("channel group", "group", groupID, "channels", len(ids))
	return nil
}

func (p *recordParser) parseBinaryDump() error {
	blockType, err := p.codec.readU16()
	if err != nil {
		return err
	}
	name, err := p.codec.readString()
	if err != nil {
		return err
	}
	vt, err := p.readValueType()
	if err != nil {
		return err
	}
	value, err := p.codec.readValue(vt)
	if err != nil {
		return err
	}
	p.file.Dumps = append(p.file.Dumps, BinaryDump{
		BlockType: blockType,
		Name:      name,
		Type:      vt,
		Value:     value,
	})
	p.logger.Debugw("binary dump", "blockType", blockType, "name", name)
	return nil
}

func (p *recordParser) readValueType() (ValueType, error) {
	off := p.codec.src.Offset()
	b, err := p.codec.readByte()
	if err != nil {
		return TypeNone, err
	}
	vt, ok := valueTypeFromByte(b)
	if !ok {
		return TypeNone, formatErrorf(off, "unknown value type %d", b)
	}
	return vt, nil
}
