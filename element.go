package mkvdemux

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/pkg/errors"
)

// ElementHeader is a decoded EBML element's id, size, and header width in
// bytes. Size is only meaningful when SizeUnknown is false.
type ElementHeader struct {
	ID          uint32
	Size        uint64
	HeaderBytes int
	SizeUnknown bool
}

// peekElementHeader decodes one element header (id VINT in raw mode,
// size VINT in value mode) from the front of data without mutating any
// window state. It returns errNeedMoreData if data is too short to hold
// the full header.
func peekElementHeader(data []byte) (ElementHeader, error) {
	id, idWidth, err := decodeVIntRaw(data)
	if err != nil {
		return ElementHeader{}, err
	}
	size, sizeWidth, unknown, err := decodeVIntValue(data[idWidth:])
	if err != nil {
		return ElementHeader{}, err
	}
	return ElementHeader{
		ID:          uint32(id),
		Size:        size,
		HeaderBytes: idWidth + sizeWidth,
		SizeUnknown: unknown,
	}, nil
}

// EbmlNode is a tagged-union parse tree node: a MASTER carries Children,
// every other type carries its own undecoded leaf bytes in Data, decoded
// lazily by the As* accessors below.
type EbmlNode struct {
	ID       uint32
	Name     string
	Type     ElementType
	Data     []byte
	Children []EbmlNode
}

// AsUint decodes Data as a big-endian unsigned integer. An empty Data
// decodes to 0.
func (n EbmlNode) AsUint() uint64 {
	var v uint64
	for _, b := range n.Data {
		v = (v << 8) | uint64(b)
	}
	return v
}

// AsInt decodes Data as a big-endian two's-complement signed integer with
// sign extension from the MSB.
func (n EbmlNode) AsInt() int64 {
	if len(n.Data) == 0 {
		return 0
	}
	v := n.AsUint()
	if n.Data[0]&0x80 == 0 {
		return int64(v)
	}
	bits := uint(len(n.Data)) * 8
	if bits >= 64 {
		return int64(v)
	}
	return int64(v) - (1 << bits)
}

// AsFloat decodes Data as an IEEE-754 big-endian float of width 4 or 8
// bytes. Any other width recovers as zero; no diagnostic is logged for
// that case.
func (n EbmlNode) AsFloat() float64 {
	switch len(n.Data) {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(n.Data)))
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(n.Data))
	default:
		return 0
	}
}

// AsString returns Data as text with a single trailing NUL trimmed; UTF-8
// validity is not checked.
func (n EbmlNode) AsString() string {
	d := n.Data
	if len(d) > 0 && d[len(d)-1] == 0 {
		d = d[:len(d)-1]
	}
	return string(d)
}

// dateEpoch is the Matroska Date reference instant, 2001-01-01T00:00:00 UTC.
var dateEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// AsDate decodes Data as signed nanoseconds since 2001-01-01T00:00:00 UTC
// and returns the corresponding time.Time.
func (n EbmlNode) AsDate() time.Time {
	return dateEpoch.Add(time.Duration(n.AsInt()))
}

// AsBytes returns the raw leaf payload.
func (n EbmlNode) AsBytes() []byte {
	return n.Data
}

// readTree recursively parses exactly totalSize bytes of data into a list
// of sibling EbmlNodes. data must already hold at least totalSize bytes:
// callers (the bounded-master helpers in controller.go) are responsible for
// buffering a whole bounded element before calling readTree.
func readTree(data []byte, totalSize uint64) ([]EbmlNode, error) {
	var children []EbmlNode
	var pos uint64

	for pos < totalSize {
		remaining := data[pos:totalSize]
		hdr, err := peekElementHeader(remaining)
		if err != nil {
			if errors.Is(err, errNeedMoreData) {
				// Declared totalSize promised more bytes than the buffer
				// actually contains for this header; treat the parent as
				// malformed-but-recoverable and stop here.
				break
			}
			return nil, err
		}

		if hdr.SizeUnknown {
			// "Unknown length sentinel inside a bounded parent" -> malformed,
			// skip; parsing of this master terminates defensively.
			break
		}

		childEnd := pos + uint64(hdr.HeaderBytes) + hdr.Size
		if childEnd > totalSize {
			// Declared child size overruns the parent's remaining budget;
			// skip the remainder and stop.
			break
		}

		payload := data[pos+uint64(hdr.HeaderBytes) : childEnd]
		entry, known := schemaLookup(hdr.ID)

		switch {
		case !known:
			children = append(children, EbmlNode{ID: hdr.ID, Type: TypeBinary, Data: payload})
		case entry.typ == TypeStreamed:
			// Segment/Cluster: not recursed into here; L7 drives them.
			children = append(children, EbmlNode{ID: hdr.ID, Name: entry.name, Type: TypeStreamed, Data: payload})
		case entry.typ == TypeMaster:
			sub, err := readTree(payload, uint64(len(payload)))
			if err != nil && !errors.Is(err, ErrFormat) {
				return nil, err
			}
			children = append(children, EbmlNode{ID: hdr.ID, Name: entry.name, Type: TypeMaster, Children: sub})
		default:
			children = append(children, EbmlNode{ID: hdr.ID, Name: entry.name, Type: entry.typ, Data: payload})
		}

		pos = childEnd
	}

	return children, nil
}
