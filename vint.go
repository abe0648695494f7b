package mkvdemux

import "github.com/pkg/errors"

// maxVIntWidth is the largest VINT width the codec accepts, per spec.
const maxVIntWidth = 8

// unknownSizeSentinel is the all-ones value that marks an "unknown length"
// element size once the leading length-marker bit has been cleared.
func unknownSizeSentinel(width int) uint64 {
	return (uint64(1) << uint(7*width)) - 1
}

// vintWidth returns the total VINT width (1..8) encoded by the first byte's
// leading-one position, or 0 if the byte carries no length marker at all
// (a format error in the caller's eyes).
func vintWidth(first byte) int {
	for i := 0; i < 8; i++ {
		if first&(0x80>>uint(i)) != 0 {
			return i + 1
		}
	}
	return 0
}

// decodeVIntRaw decodes a VINT in "raw" mode: the length-marker bit is kept
// in the returned value. This is used exclusively for element IDs.
//
// It returns the decoded value and its width in bytes, which is also the
// number of bytes consumed from data. If data is too short to hold the full VINT,
// errNeedMoreData is returned.
func decodeVIntRaw(data []byte) (value uint64, width int, err error) {
	return decodeVInt(data, true, false)
}

// decodeVIntValue decodes a VINT in "value" mode: the length-marker bit is
// cleared before the value is assembled. This is used for element sizes and
// unsigned VINT payloads (e.g. the SimpleBlock track number).
//
// If the cleared value equals the all-ones sentinel for its width, unknown
// is true and value is meaningless; callers must check unknown before
// using value as a size.
func decodeVIntValue(data []byte) (value uint64, width int, unknown bool, err error) {
	value, width, err = decodeVInt(data, false, false)
	if err != nil {
		return 0, 0, false, err
	}
	return value, width, value == unknownSizeSentinel(width), nil
}

// decodeVIntSigned decodes a VINT in "value" mode and then removes the bias
// 2^(7*width-1) - 1, yielding a signed integer. Used to decode EBML-laced
// per-frame size deltas.
func decodeVIntSigned(data []byte) (value int64, width int, err error) {
	raw, w, err := decodeVInt(data, false, false)
	if err != nil {
		return 0, 0, err
	}
	bias := int64((uint64(1) << uint(7*w-1)) - 1)
	return int64(raw) - bias, w, nil
}

// decodeVInt is the shared implementation behind decodeVIntRaw and
// decodeVIntValue. It is illegal to request raw=true together with a signed
// interpretation (the spec forbids it outright), so signed decoding always
// goes through decodeVIntSigned, which itself calls decodeVInt(data, false,
// false) and applies the bias afterwards; the signed bool parameter here is
// kept only for documentation purposes and is always false in this package.
func decodeVInt(data []byte, raw, signed bool) (value uint64, width int, err error) {
	if raw && signed {
		return 0, 0, errors.New("mkvdemux: raw VINT decoding cannot be combined with signed decoding")
	}
	if len(data) == 0 {
		return 0, 0, errNeedMoreData
	}

	first := data[0]
	if first == 0 {
		return 0, 0, errors.Wrap(ErrFormat, "vint: first byte has no length marker (width 0)")
	}

	w := vintWidth(first)
	if w == 0 || w > maxVIntWidth {
		return 0, 0, errors.Wrapf(ErrFormat, "vint: invalid width %d", w)
	}
	if len(data) < w {
		return 0, 0, errNeedMoreData
	}

	lengthMask := byte(0x80) >> uint(w-1)
	var result uint64
	if raw {
		result = uint64(first)
	} else {
		result = uint64(first &^ lengthMask)
	}
	for i := 1; i < w; i++ {
		result = (result << 8) | uint64(data[i])
	}

	return result, w, nil
}

// encodeVInt encodes value using the smallest width that can hold it, or
// width bytes if explicitly requested (0 means "smallest"). It is the
// inverse of decodeVIntValue and is used by tests exercising the VInt
// round-trip property.
func encodeVInt(value uint64, width int) []byte {
	if width == 0 {
		width = 1
		for width < maxVIntWidth && value > unknownSizeSentinel(width) {
			width++
		}
	}
	buf := make([]byte, width)
	v := value
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	buf[0] |= 0x80 >> uint(width-1)
	return buf
}
