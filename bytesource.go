package mkvdemux

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Capabilities reports what a ByteSource supports. The controller does not
// consult it: a jump on a source that cannot seek fails with whatever error
// that source's Seek returns.
type Capabilities struct {
	Readable bool
	Seekable bool
}

// ByteSource is the input abstraction the controller reads through: an
// explicit, context-threaded interface in place of a bare io.ReadSeeker, so
// the controller can drive both fully-seekable files and a forward-only
// stream through one shape.
//
// Read's tag/gotTag pair implements restart-counter cancellation: a caller
// passes the restart counter in effect when the read was issued; a
// ByteSource that completes a read asynchronously echoes back whatever tag
// was current when the bytes actually arrived, so the caller can discard a
// result that arrived after a seek or shutdown bumped the counter. The two
// concrete implementations below are synchronous, so they always echo the
// tag they were given.
type ByteSource interface {
	Capabilities() Capabilities
	Read(ctx context.Context, dst []byte, tag uint64) (n int, gotTag uint64, err error)
	Seek(ctx context.Context, absOffset uint64) error
	Position() uint64
}

// FileByteSource wraps an *os.File, giving the controller full seek
// capability.
type FileByteSource struct {
	f   *os.File
	pos uint64
}

func NewFileByteSource(f *os.File) *FileByteSource {
	return &FileByteSource{f: f}
}

func (s *FileByteSource) Capabilities() Capabilities {
	return Capabilities{Readable: true, Seekable: true}
}

func (s *FileByteSource) Read(ctx context.Context, dst []byte, tag uint64) (int, uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, tag, errors.Wrap(ErrCancelled, err.Error())
	}
	n, err := s.f.Read(dst)
	s.pos += uint64(n)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		return n, tag, errors.Wrap(err, "mkvdemux: file byte source read")
	}
	return n, tag, nil
}

func (s *FileByteSource) Seek(ctx context.Context, absOffset uint64) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(ErrCancelled, err.Error())
	}
	off, err := s.f.Seek(int64(absOffset), io.SeekStart)
	if err != nil {
		return errors.Wrap(err, "mkvdemux: file byte source seek")
	}
	s.pos = uint64(off)
	return nil
}

func (s *FileByteSource) Position() uint64 {
	return s.pos
}

// StreamByteSource wraps a forward-only io.Reader. Seek only succeeds when
// absOffset equals the current position (a no-op "seek"); anything else
// fails, since the underlying reader cannot rewind or skip ahead cheaply.
type StreamByteSource struct {
	r   io.Reader
	pos uint64
}

func NewStreamByteSource(r io.Reader) *StreamByteSource {
	return &StreamByteSource{r: r}
}

func (s *StreamByteSource) Capabilities() Capabilities {
	return Capabilities{Readable: true, Seekable: false}
}

func (s *StreamByteSource) Read(ctx context.Context, dst []byte, tag uint64) (int, uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, tag, errors.Wrap(ErrCancelled, err.Error())
	}
	n, err := s.r.Read(dst)
	s.pos += uint64(n)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		return n, tag, errors.Wrap(err, "mkvdemux: stream byte source read")
	}
	return n, tag, nil
}

func (s *StreamByteSource) Seek(ctx context.Context, absOffset uint64) error {
	if absOffset == s.pos {
		return nil
	}
	return errors.Wrap(ErrUnsupported, "mkvdemux: stream byte source cannot seek")
}

func (s *StreamByteSource) Position() uint64 {
	return s.pos
}
