package mpeg1

import "github.com/pkg/errors"

// mpegVersion identifies the MPEG audio version a frame header declares.
type mpegVersion uint8

const (
	Version1 mpegVersion = iota
	Version2
)

// mpegLayer identifies the MPEG audio layer (I, II, or III).
type mpegLayer uint8

const (
	LayerI mpegLayer = iota + 1
	LayerII
	LayerIII
)

// AudioFrameHeader is a 4-byte MPEG-1 audio frame header decoded per
// ISO/IEC 11172-3 §2.4.1.3.
type AudioFrameHeader struct {
	Version      mpegVersion
	Layer        mpegLayer
	Protected    bool
	BitrateKbps  uint32
	SampleRateHz uint32
	Padding      bool
	ChannelMode  uint8 // 0=stereo 1=joint-stereo 2=dual-channel 3=mono
	FrameLength  uint32 // total frame size in bytes, including the header
}

// bitrateTableV1L1 etc. are the fixed ISO/IEC 11172-3 Table B.1 bitrate
// tables, indexed by the 4-bit bitrate_index (index 0 = "free format",
// represented here as 0).
var bitrateTableV1L1 = [16]uint32{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0}
var bitrateTableV1L2 = [16]uint32{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0}
var bitrateTableV1L3 = [16]uint32{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}

var sampleRateTableV1 = [4]uint32{44100, 48000, 32000, 0}

// ParseAudioFrameHeader decodes the 4-byte frame header at data[0:4], per
// ISO/IEC 11172-3 §2.4.1.3. Only MPEG Version 1 is recognized; a Version 2
// (MPEG-2 LSF) sync pattern is reported as ErrFormat rather than silently
// misparsed.
func ParseAudioFrameHeader(data []byte) (AudioFrameHeader, error) {
	if len(data) < 4 {
		return AudioFrameHeader{}, errors.Wrap(ErrFormat, "mpeg1: audio header too short")
	}
	if data[0] != 0xFF || data[1]&0xE0 != 0xE0 {
		return AudioFrameHeader{}, errors.Wrap(ErrFormat, "mpeg1: missing frame sync")
	}

	versionBits := (data[1] >> 3) & 0x03
	if versionBits != 0x03 {
		return AudioFrameHeader{}, errors.Wrap(ErrFormat, "mpeg1: not an MPEG-1 audio frame")
	}
	layerBits := (data[1] >> 1) & 0x03
	var layer mpegLayer
	switch layerBits {
	case 0x03:
		layer = LayerI
	case 0x02:
		layer = LayerII
	case 0x01:
		layer = LayerIII
	default:
		return AudioFrameHeader{}, errors.Wrap(ErrFormat, "mpeg1: reserved layer value")
	}
	protected := data[1]&0x01 == 0

	bitrateIdx := (data[2] >> 4) & 0x0F
	if bitrateIdx == 0x0F {
		return AudioFrameHeader{}, errors.Wrap(ErrFormat, "mpeg1: reserved bitrate index")
	}
	var bitrate uint32
	switch layer {
	case LayerI:
		bitrate = bitrateTableV1L1[bitrateIdx]
	case LayerII:
		bitrate = bitrateTableV1L2[bitrateIdx]
	case LayerIII:
		bitrate = bitrateTableV1L3[bitrateIdx]
	}

	sampleRateIdx := (data[2] >> 2) & 0x03
	if sampleRateIdx == 0x03 {
		return AudioFrameHeader{}, errors.Wrap(ErrFormat, "mpeg1: reserved sampling rate index")
	}
	sampleRate := sampleRateTableV1[sampleRateIdx]

	padding := data[2]&0x02 != 0
	channelMode := (data[3] >> 6) & 0x03

	h := AudioFrameHeader{
		Version:      Version1,
		Layer:        layer,
		Protected:    protected,
		BitrateKbps:  bitrate,
		SampleRateHz: sampleRate,
		Padding:      padding,
		ChannelMode:  channelMode,
	}
	h.FrameLength = frameLength(layer, bitrate, sampleRate, padding)
	return h, nil
}

// frameLength computes the total frame size (header included) per ISO/IEC
// 11172-3's standard formulas.
func frameLength(layer mpegLayer, bitrateKbps, sampleRateHz uint32, padding bool) uint32 {
	if sampleRateHz == 0 || bitrateKbps == 0 {
		return 0
	}
	pad := uint32(0)
	if padding {
		pad = 1
	}
	switch layer {
	case LayerI:
		return (12*bitrateKbps*1000/sampleRateHz + pad) * 4
	default: // Layer II and III share the same formula
		return 144*bitrateKbps*1000/sampleRateHz + pad
	}
}
