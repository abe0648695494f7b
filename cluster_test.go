package mkvdemux

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario E: SimpleBlock framing, no lacing.
func TestParseBlockPayload_NoLacing(t *testing.T) {
	payload := append([]byte{0x81, 0x00, 0x10, 0x80}, make([]byte, 5)...)
	pb, err := parseBlockPayload(payload)
	require.NoError(t, err)
	require.Equal(t, uint64(1), pb.TrackNumber)
	require.EqualValues(t, 16, pb.RelativeTimecode)
	require.True(t, pb.Keyframe)
	require.Len(t, pb.Frames, 1)
	require.Equal(t, 5, pb.Frames[0].Len)
	require.Equal(t, 4, pb.Frames[0].Offset)
}

// Scenario F: EBML-laced block, three frames of sizes {3, 3, rem}. The last
// frame's size is derived from whatever bytes remain, so the actual frame
// payload bytes for every frame (not just the last) must be present after
// the lacing header.
func TestParseBlockPayload_EBMLLacing(t *testing.T) {
	rem := 4
	body := []byte{
		0x81,       // track 1
		0x00, 0x00, // relative timecode 0
		0x06, // flags: EBML lacing
		0x02, // frame_count - 1 = 2 -> 3 frames
		0x83, // first frame size VINT, value-mode width 1 -> 3
		0xBF, // delta VINT, signed-biased width 1, bias 63 -> unbiased 0, so frame 2 size stays 3
	}
	body = append(body, make([]byte, 3+3+rem)...) // frame0 + frame1 + frame2 payload bytes

	pb, err := parseBlockPayload(body)
	require.NoError(t, err)
	require.Len(t, pb.Frames, 3)
	require.Equal(t, 3, pb.Frames[0].Len)
	require.Equal(t, 3, pb.Frames[1].Len)
	require.Equal(t, rem, pb.Frames[2].Len)
}

func TestParseBlockPayload_FixedLacing(t *testing.T) {
	body := []byte{
		0x81,       // track 1
		0x00, 0x00, // relative timecode 0
		0x04, // flags: fixed-size lacing
		0x02, // n=2 -> frame_count=3
	}
	body = append(body, make([]byte, 9)...) // 9 / 3 = 3 bytes per frame

	pb, err := parseBlockPayload(body)
	require.NoError(t, err)
	require.Len(t, pb.Frames, 3)
	for _, f := range pb.Frames {
		require.Equal(t, 3, f.Len)
	}
}

func TestParseBlockPayload_XiphLacingUnsupported(t *testing.T) {
	body := []byte{0x81, 0x00, 0x00, 0x02, 0x00}
	_, err := parseBlockPayload(body)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestParseBlockPayload_TruncatedLacingHeaderIsFormatError(t *testing.T) {
	// flags 0xFF masks to EBML lacing (0x06) with no count byte following.
	body := []byte{0x81, 0x00, 0x00, 0xFF}
	_, err := parseBlockPayload(body)
	require.ErrorIs(t, err, ErrFormat)
}

// Property 3: frame.timestamp_ticks == cluster.timecode + block.relative_timecode.
func TestBuildFrameDescriptors_Timestamp(t *testing.T) {
	pb := parsedBlock{
		TrackNumber:      1,
		RelativeTimecode: 250,
		Keyframe:         true,
		Frames:           []frameSpan{{Offset: 4, Len: 10}},
	}
	descs := buildFrameDescriptors(pb, 0, 1000, nil, defaultTimecodeScale, 0, false, pb.Keyframe)
	require.Len(t, descs, 1)
	require.EqualValues(t, 1250, descs[0].TimestampTicks)
	require.False(t, descs[0].HasDuration)
}

func TestBuildFrameDescriptors_BlockDurationBeatsDefaultDuration(t *testing.T) {
	track := &Track{HasDefaultDuration: true, DefaultDurationNs: 20_000_000}
	pb := parsedBlock{Frames: []frameSpan{{Offset: 0, Len: 1}}}

	withBlockDuration := buildFrameDescriptors(pb, 0, 0, track, defaultTimecodeScale, 5, true, true)
	require.True(t, withBlockDuration[0].HasDuration)
	require.EqualValues(t, 5, withBlockDuration[0].DurationTicks)

	withoutBlockDuration := buildFrameDescriptors(pb, 0, 0, track, defaultTimecodeScale, 0, false, true)
	require.True(t, withoutBlockDuration[0].HasDuration)
	require.EqualValues(t, 20, withoutBlockDuration[0].DurationTicks) // 20_000_000 ns / 1_000_000 ns-per-tick
}
