package mpeg1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAudioFrameHeader_LayerIII128kbps44100(t *testing.T) {
	data := []byte{0xFF, 0xFB, 0x90, 0x00}
	h, err := ParseAudioFrameHeader(data)
	require.NoError(t, err)
	require.Equal(t, Version1, h.Version)
	require.Equal(t, LayerIII, h.Layer)
	require.False(t, h.Protected)
	require.EqualValues(t, 128, h.BitrateKbps)
	require.EqualValues(t, 44100, h.SampleRateHz)
	require.False(t, h.Padding)
	require.EqualValues(t, 0, h.ChannelMode)
	require.EqualValues(t, 417, h.FrameLength)
}

func TestParseAudioFrameHeader_MissingSync(t *testing.T) {
	_, err := ParseAudioFrameHeader([]byte{0xFF, 0x00, 0x90, 0x00})
	require.ErrorIs(t, err, ErrFormat)
}

func TestParseAudioFrameHeader_NotMPEG1(t *testing.T) {
	// Version bits 00 (MPEG 2.5), not the required 11.
	_, err := ParseAudioFrameHeader([]byte{0xFF, 0xE3, 0x90, 0x00})
	require.ErrorIs(t, err, ErrFormat)
}

func TestParseAudioFrameHeader_ReservedLayer(t *testing.T) {
	// Layer bits 00 is reserved.
	_, err := ParseAudioFrameHeader([]byte{0xFF, 0xF9, 0x90, 0x00})
	require.ErrorIs(t, err, ErrFormat)
}

func TestParseAudioFrameHeader_ReservedBitrateIndex(t *testing.T) {
	data := []byte{0xFF, 0xFB, 0xF0, 0x00}
	_, err := ParseAudioFrameHeader(data)
	require.ErrorIs(t, err, ErrFormat)
}

func TestParseAudioFrameHeader_ReservedSampleRateIndex(t *testing.T) {
	data := []byte{0xFF, 0xFB, 0x9C, 0x00}
	_, err := ParseAudioFrameHeader(data)
	require.ErrorIs(t, err, ErrFormat)
}

func TestParseAudioFrameHeader_TooShort(t *testing.T) {
	_, err := ParseAudioFrameHeader([]byte{0xFF, 0xFB})
	require.ErrorIs(t, err, ErrFormat)
}
