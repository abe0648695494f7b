package mkvdemux

import (
	"io"

	"github.com/pkg/errors"
)

// Error taxonomy for the demuxer. Sentinels are compared with errors.Is;
// wrapping is always done with github.com/pkg/errors so callers retain a
// stack trace on the first wrap while still unwrapping to these sentinels.
var (
	// ErrFormat means the input violates an EBML or Matroska invariant:
	// an impossible VINT, a mismatched master size, a missing required
	// field. Fatal to the current element and, outside a Cluster, fatal
	// to the file.
	ErrFormat = errors.New("mkvdemux: format error")

	// ErrUnsupported marks a recognized-but-unimplemented feature: Xiph
	// lacing (the block is skipped and parsing continues) and a
	// StreamByteSource seek to any offset other than its current one.
	ErrUnsupported = errors.New("mkvdemux: unsupported feature")

	// ErrRingCapacityExceeded means a laced block produced more frames
	// than the FrameDescriptor ring can hold. Fatal to streaming.
	ErrRingCapacityExceeded = errors.New("mkvdemux: frame descriptor ring capacity exceeded")

	// ErrEndOfStream is returned once the ByteSource reports EOF and the
	// frame ring has been drained. It is the same sentinel as io.EOF so
	// existing errors.Is(err, io.EOF) callers keep working.
	ErrEndOfStream = io.EOF

	// ErrCancelled means a shutdown was requested while a read or seek
	// was outstanding; the outstanding operation's result is discarded.
	ErrCancelled = errors.New("mkvdemux: cancelled")

	// errNeedMoreData is internal and must never cross the Consumer
	// contract boundary: it drives the Opening/Streaming read loops only.
	errNeedMoreData = errors.New("mkvdemux: need more data")
)

// IsRecoverable reports whether err represents a defect that the streaming
// controller can recover from by skipping the offending element and
// continuing at the parent (ErrFormat inside a bounded master,
// ErrUnsupported anywhere). IoError, ErrCancelled and a top-level ErrFormat
// are not recoverable by this function's contract; the controller decides
// recoverability based on where in the tree the error surfaced, not solely
// on its type, so this helper only narrows the candidate set.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrFormat) || errors.Is(err, ErrUnsupported)
}
