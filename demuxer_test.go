package mkvdemux

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDemuxer_ReadPacketAndAccessors(t *testing.T) {
	frame := bytes.Repeat([]byte{0xCC}, 6)
	data := buildMinimalFile(t, frame)
	ctx := context.Background()

	d, err := NewStreamingDemuxer(ctx, bytes.NewReader(data), DefaultConfig())
	require.NoError(t, err)

	require.Equal(t, 1, d.GetNumTracks())
	track, ok := d.GetTrackInfo(0)
	require.True(t, ok)
	require.Equal(t, "V_MPEG1", track.CodecID)

	_, ok = d.GetTrackInfo(1)
	require.False(t, ok, "out-of-range track index must report ok=false")

	info := d.GetFileInfo()
	require.EqualValues(t, 1_000_000, info.TimecodeScale)
	require.Empty(t, d.GetCues())

	pkt, err := d.ReadPacket(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, pkt.TrackNumber)
	require.True(t, pkt.IsKeyframe)
	require.Equal(t, frame, pkt.Data)

	_, err = d.ReadPacket(ctx)
	require.ErrorIs(t, err, ErrEndOfStream)

	d.Close()
	require.Equal(t, StateShutDown, d.Controller().State())
}

func TestDemuxer_SeekWithoutCuesIsANoOp(t *testing.T) {
	data := buildMinimalFile(t, []byte{0x01, 0x02})
	ctx := context.Background()

	d, err := NewStreamingDemuxer(ctx, bytes.NewReader(data), DefaultConfig())
	require.NoError(t, err)

	// StreamByteSource rejects any real seek; with no Cues in this fixture
	// seekToMediaTime returns early without attempting one, so Seek must
	// succeed and leave the controller Started.
	require.NoError(t, d.Seek(ctx, 12345))
	require.Equal(t, StateStarted, d.Controller().State())
}
