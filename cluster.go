package mkvdemux

import (
	"github.com/pkg/errors"
)

// Block flags byte bit layout. blockFlagKeyframe is only meaningful on a
// SimpleBlock; on a BlockGroup's Block the bit is reserved, and keyframe
// status is instead inferred from whether a ReferenceBlock child is present.
const (
	blockFlagKeyframe   = 0x80
	blockFlagInvisible  = 0x08
	blockFlagDiscardable = 0x01
	blockFlagLacingMask = 0x06
)

const (
	lacingNone  = 0x00
	lacingXiph  = 0x02
	lacingFixed = 0x04
	lacingEBML  = 0x06
)

// parsedBlock is the decoded SimpleBlock/Block header plus the list of
// frames lacing produced, relative offsets into the block's own payload
// slice. The caller adds payloadBase to translate these into absolute
// window offsets.
//
// Keyframe reflects the flags byte's 0x80 bit as-is: correct for a
// SimpleBlock, meaningless for a BlockGroup's Block (where the caller must
// derive keyframe status from ReferenceBlock's absence and pass it to
// buildFrameDescriptors separately).
type parsedBlock struct {
	TrackNumber      uint64
	RelativeTimecode int16
	Keyframe         bool
	Invisible        bool
	Discardable      bool
	Frames           []frameSpan
}

type frameSpan struct {
	Offset int
	Len    int
}

// parseBlockPayload decodes a SimpleBlock or Block payload: a value-mode
// VInt track number, a 16-bit signed big-endian relative timecode, one
// flags byte, then frame payload(s) per the lacing code.
func parseBlockPayload(payload []byte) (parsedBlock, error) {
	track, trackWidth, _, err := decodeVIntValue(payload)
	if err != nil {
		return parsedBlock{}, errors.Wrap(ErrFormat, "block: track number vint")
	}
	pos := trackWidth

	if len(payload) < pos+3 {
		return parsedBlock{}, errors.Wrap(ErrFormat, "block: truncated header")
	}
	relTimecode := int16(uint16(payload[pos])<<8 | uint16(payload[pos+1]))
	pos += 2

	flags := payload[pos]
	pos++

	pb := parsedBlock{
		TrackNumber:      track,
		RelativeTimecode: relTimecode,
		Keyframe:         flags&blockFlagKeyframe != 0,
		Invisible:        flags&blockFlagInvisible != 0,
		Discardable:      flags&blockFlagDiscardable != 0,
	}

	lacing := flags & blockFlagLacingMask
	frames, err := parseLacing(payload[pos:], lacing)
	if err != nil {
		return parsedBlock{}, err
	}
	for i := range frames {
		frames[i].Offset += pos
	}
	pb.Frames = frames
	return pb, nil
}

// parseLacing dispatches on the lacing code. body is the block payload
// after the track/timecode/flags header; returned frameSpan offsets are
// relative to body.
func parseLacing(body []byte, lacing byte) ([]frameSpan, error) {
	switch lacing {
	case lacingNone:
		return []frameSpan{{Offset: 0, Len: len(body)}}, nil
	case lacingXiph:
		return nil, errors.Wrap(ErrUnsupported, "block: xiph lacing not supported")
	case lacingFixed:
		return parseFixedLacing(body)
	case lacingEBML:
		return parseEBMLLacing(body)
	default:
		return nil, errors.Wrapf(ErrFormat, "block: invalid lacing code %#x", lacing)
	}
}

// parseFixedLacing: one count byte n, frame_count = n+1, each frame size =
// (remaining bytes) / frame_count.
func parseFixedLacing(body []byte) ([]frameSpan, error) {
	if len(body) < 1 {
		return nil, errors.Wrap(ErrFormat, "block: fixed lacing missing count byte")
	}
	frameCount := int(body[0]) + 1
	rest := body[1:]
	if frameCount == 0 || len(rest)%frameCount != 0 {
		return nil, errors.Wrap(ErrFormat, "block: fixed lacing size does not divide evenly")
	}
	frameSize := len(rest) / frameCount
	frames := make([]frameSpan, frameCount)
	offset := 1
	for i := 0; i < frameCount; i++ {
		frames[i] = frameSpan{Offset: offset, Len: frameSize}
		offset += frameSize
	}
	return frames, nil
}

// parseEBMLLacing: one count byte n, frame_count = n+1. The first frame's
// length is a value-mode VInt. Each subsequent frame except the last is a
// signed-biased VInt delta added to the previous size. The last frame's size
// is whatever bytes remain.
func parseEBMLLacing(body []byte) ([]frameSpan, error) {
	if len(body) < 1 {
		return nil, errors.Wrap(ErrFormat, "block: ebml lacing missing count byte")
	}
	frameCount := int(body[0]) + 1
	pos := 1

	sizes := make([]int64, frameCount)
	if frameCount > 1 {
		first, w, _, err := decodeVIntValue(body[pos:])
		if err != nil {
			return nil, errors.Wrap(ErrFormat, "block: ebml lacing first size vint")
		}
		pos += w
		sizes[0] = int64(first)

		for i := 1; i < frameCount-1; i++ {
			delta, w, err := decodeVIntSigned(body[pos:])
			if err != nil {
				return nil, errors.Wrap(ErrFormat, "block: ebml lacing delta vint")
			}
			pos += w
			sizes[i] = sizes[i-1] + delta
			if sizes[i] < 0 {
				return nil, errors.Wrap(ErrFormat, "block: ebml lacing produced a negative frame size")
			}
		}
	}

	declared := 0
	for i := 0; i < frameCount-1; i++ {
		declared += int(sizes[i])
	}
	lastSize := len(body) - pos - declared
	if lastSize < 0 {
		return nil, errors.Wrap(ErrFormat, "block: ebml lacing frame sizes exceed block payload")
	}
	sizes[frameCount-1] = int64(lastSize)

	frames := make([]frameSpan, frameCount)
	offset := pos
	for i, sz := range sizes {
		frames[i] = frameSpan{Offset: offset, Len: int(sz)}
		offset += int(sz)
	}
	return frames, nil
}

// buildFrameDescriptors turns one SimpleBlock or BlockGroup into the
// FrameDescriptors it produces: absolute timestamp = clusterTimecode +
// block.relative_timecode, duration falls back to the track's
// DefaultDurationNs (converted to ticks) when no BlockDuration is given.
//
// isKeyframe is supplied by the caller rather than read off pb.Keyframe
// directly: the flags byte's keyframe bit is only meaningful on a bare
// SimpleBlock. For a Block inside a BlockGroup, the caller derives it from
// whether a ReferenceBlock child was present instead.
func buildFrameDescriptors(pb parsedBlock, payloadBase int, clusterTimecode uint64, track *Track, timecodeScale uint64, blockDuration uint64, hasBlockDuration bool, isKeyframe bool) []FrameDescriptor {
	ts := int64(clusterTimecode) + int64(pb.RelativeTimecode)

	var fallbackDurationTicks uint64
	hasFallback := false
	if track != nil && track.HasDefaultDuration && timecodeScale > 0 {
		fallbackDurationTicks = track.DefaultDurationNs / timecodeScale
		hasFallback = true
	}

	descs := make([]FrameDescriptor, len(pb.Frames))
	for i, f := range pb.Frames {
		fd := FrameDescriptor{
			TrackNumber:    pb.TrackNumber,
			TimestampTicks: ts,
			IsKeyframe:     isKeyframe,
			PayloadOffset:  payloadBase + f.Offset,
			PayloadLen:     f.Len,
		}
		switch {
		case hasBlockDuration:
			fd.DurationTicks = blockDuration
			fd.HasDuration = true
		case hasFallback:
			fd.DurationTicks = fallbackDurationTicks
			fd.HasDuration = true
		}
		descs[i] = fd
	}
	return descs
}
