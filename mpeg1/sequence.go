// Package mpeg1 parses MPEG-1 video sequence headers and audio frame
// headers. It has no dependency on the EBML/Matroska model: a track whose
// CodecID is "V_MPEG1" or "A_MPEG/L2" hands its CodecPrivate or frame
// payload to this package, not the other way around.
package mpeg1

import "github.com/pkg/errors"

// ErrFormat marks a sequence header or frame header that violates the
// MPEG-1 bitstream syntax: missing start code, a marker bit that should be
// 1 but isn't, and similar structural defects.
var ErrFormat = errors.New("mpeg1: format error")

// sequenceHeaderStartCode is the 32-bit start code that opens an MPEG-1
// video sequence_header(), per ISO/IEC 11172-2 §2.4.3.2.
const sequenceHeaderStartCode = 0x000001B3

// SequenceHeader is an MPEG-1 video sequence_header() decoded per ISO/IEC
// 11172-2 §2.4.3.2.
type SequenceHeader struct {
	Width                    uint16
	Height                   uint16
	AspectRatioCode          uint8
	FrameRateCode            uint8
	BitRate                  uint32 // bits/sec; 0 means "variable"
	VBVBufferSize            uint16
	ConstrainedParameters    bool
	HasIntraQuantMatrix      bool
	IntraQuantMatrix         [64]byte
	HasNonIntraQuantMatrix   bool
	NonIntraQuantMatrix      [64]byte
}

// bitReader is a minimal MSB-first bit reader over a byte slice.
type bitReader struct {
	data []byte
	pos  int // bit position
}

func (r *bitReader) bitsLeft() int { return len(r.data)*8 - r.pos }

func (r *bitReader) readBits(n int) (uint32, error) {
	if r.bitsLeft() < n {
		return 0, errors.Wrap(ErrFormat, "mpeg1: truncated bitstream")
	}
	var v uint32
	for i := 0; i < n; i++ {
		byteIdx := r.pos / 8
		bitIdx := 7 - (r.pos % 8)
		bit := (r.data[byteIdx] >> uint(bitIdx)) & 1
		v = (v << 1) | uint32(bit)
		r.pos++
	}
	return v, nil
}

func (r *bitReader) readFlag() (bool, error) {
	v, err := r.readBits(1)
	return v != 0, err
}

// ParseSequenceHeader decodes a sequence_header() starting at data[0], per
// ISO/IEC 11172-2 §2.4.3.2. data must begin with the 4-byte start code
// 0x00 0x00 0x01 0xB3.
func ParseSequenceHeader(data []byte) (SequenceHeader, error) {
	if len(data) < 8 {
		return SequenceHeader{}, errors.Wrap(ErrFormat, "mpeg1: sequence header too short")
	}
	code := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	if code != sequenceHeaderStartCode {
		return SequenceHeader{}, errors.Wrap(ErrFormat, "mpeg1: missing sequence header start code")
	}

	r := &bitReader{data: data[4:]}
	var h SequenceHeader

	width, err := r.readBits(12)
	if err != nil {
		return SequenceHeader{}, err
	}
	height, err := r.readBits(12)
	if err != nil {
		return SequenceHeader{}, err
	}
	aspect, err := r.readBits(4)
	if err != nil {
		return SequenceHeader{}, err
	}
	frameRate, err := r.readBits(4)
	if err != nil {
		return SequenceHeader{}, err
	}
	bitRate, err := r.readBits(18)
	if err != nil {
		return SequenceHeader{}, err
	}
	marker, err := r.readFlag()
	if err != nil {
		return SequenceHeader{}, err
	}
	if !marker {
		return SequenceHeader{}, errors.Wrap(ErrFormat, "mpeg1: missing marker_bit after bit_rate_value")
	}
	vbv, err := r.readBits(10)
	if err != nil {
		return SequenceHeader{}, err
	}
	constrained, err := r.readFlag()
	if err != nil {
		return SequenceHeader{}, err
	}

	h.Width = uint16(width)
	h.Height = uint16(height)
	h.AspectRatioCode = uint8(aspect)
	h.FrameRateCode = uint8(frameRate)
	if bitRate == 0x3FFFF {
		h.BitRate = 0
	} else {
		h.BitRate = bitRate * 400
	}
	h.VBVBufferSize = uint16(vbv)
	h.ConstrainedParameters = constrained

	hasIntra, err := r.readFlag()
	if err != nil {
		return SequenceHeader{}, err
	}
	h.HasIntraQuantMatrix = hasIntra
	if hasIntra {
		for i := 0; i < 64; i++ {
			b, err := r.readBits(8)
			if err != nil {
				return SequenceHeader{}, err
			}
			h.IntraQuantMatrix[i] = byte(b)
		}
	}

	hasNonIntra, err := r.readFlag()
	if err != nil {
		return SequenceHeader{}, err
	}
	h.HasNonIntraQuantMatrix = hasNonIntra
	if hasNonIntra {
		for i := 0; i < 64; i++ {
			b, err := r.readBits(8)
			if err != nil {
				return SequenceHeader{}, err
			}
			h.NonIntraQuantMatrix[i] = byte(b)
		}
	}

	return h, nil
}
