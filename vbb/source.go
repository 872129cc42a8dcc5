package vbb

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// defaultChunkSize is the slice of file loaded per read when the caller
// does not override it.
const defaultChunkSize = 8 << 20

// chunkedSource feeds the decoder fixed-size slices of the file while
// guaranteeing that every record indexed by chunk offset stays addressable
// until the next explicit load. The buffer zone keeps the scanner from
// indexing a record that could straddle a chunk boundary.
type chunkedSource struct {
	f    *os.File
	size int64

	chunk      []byte
	pos        int
	chunkStart int64 // absolute file offset of chunk[0]
	exhausted  bool  // no file bytes remain beyond chunk
	bufferZone int   // -1 until SetBufferZone
	chunkSize  int
}

func openSource(path string, chunkSize int) (*chunkedSource, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		utils.UncheckedError(f.Close())
		return nil, errors.Wrapf(err, "statting %s", path)
	}
	s := &chunkedSource{f: f, size: info.Size(), bufferZone: -1, chunkSize: chunkSize}
	if err := s.fill(chunkSize); err != nil {
		utils.UncheckedError(f.Close())
		return nil, err
	}
	return s, nil
}

// fill appends up to n more file bytes to the current chunk. Appending
// never shifts existing bytes, so recorded chunk offsets stay valid.
func (s *chunkedSource) fill(n int) error {
	if n <= 0 || s.exhausted {
		return nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(s.f, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.exhausted = true
	} else if err != nil {
		return errors.Wrap(err, "reading chunk")
	}
	s.chunk = append(s.chunk, buf[:read]...)
	return nil
}

// SetBufferZone fixes the safety margin before the chunk end. Scanning
// reads require it; the decoder sets it to the longest sample record plus
// two once layouts are known.
func (s *chunkedSource) SetBufferZone(n int) {
	s.bufferZone = n
}

// ReadBytes consumes up to n bytes of the current chunk. nearEnd reports
// that the read landed within the buffer zone of the chunk's end while
// more of the file remains; callers holding chunk offsets must flush and
// LoadNextChunk before reading on. A read that would run past the chunk
// extends it in place first, so fewer than n bytes come back only at end
// of file.
func (s *chunkedSource) ReadBytes(n int) (data []byte, nearEnd bool, err error) {
	if s.bufferZone < 0 {
		panic("vbb: ReadBytes before SetBufferZone")
	}
	if len(s.chunk)-s.pos < n && !s.exhausted {
		grow := n - (len(s.chunk) - s.pos)
		if grow < s.chunkSize {
			grow = s.chunkSize
		}
		if err := s.fill(grow); err != nil {
			return nil, false, err
		}
	}
	end := s.pos + n
	if end > len(s.chunk) {
		end = len(s.chunk)
	}
	data = s.chunk[s.pos:end]
	s.pos = end
	nearEnd = !s.exhausted && len(s.chunk)-s.pos < s.bufferZone
	return data, nearEnd, nil
}

// Advance moves the cursor by steps, negative to rewind. It clamps at the
// chunk bounds and reports how far it actually moved.
func (s *chunkedSource) Advance(steps int) (moved int, clampedStart, clampedEnd bool) {
	target := s.pos + steps
	if target < 0 {
		target, clampedStart = 0, true
	}
	if target > len(s.chunk) {
		target, clampedEnd = len(s.chunk), true
	}
	moved = target - s.pos
	s.pos = target
	return moved, clampedStart, clampedEnd
}

// LoadNextChunk drops everything before the cursor, keeps the unread tail
// and appends the next slice of the file. It reports true end of file when
// no tail remains and the file is exhausted. All previously recorded chunk
// offsets are invalid afterward.
func (s *chunkedSource) LoadNextChunk() (eof bool, err error) {
	s.chunkStart += int64(s.pos)
	n := copy(s.chunk, s.chunk[s.pos:])
	s.chunk = s.chunk[:n]
	s.pos = 0
	if err := s.fill(s.chunkSize); err != nil {
		return false, err
	}
	return len(s.chunk) == 0 && s.exhausted, nil
}

// Offset is the absolute file position of the cursor.
func (s *chunkedSource) Offset() int64 {
	return s.chunkStart + int64(s.pos)
}

// Size is the total file length in bytes.
func (s *chunkedSource) Size() int64 {
	return s.size
}

// ChunkPos is the cursor position within the current chunk.
func (s *chunkedSource) ChunkPos() int {
	return s.pos
}

func (s *chunkedSource) bytesAt(start, end int) []byte {
	return s.chunk[start:end]
}

func (s *chunkedSource) Close() error {
	return s.f.Close()
}
