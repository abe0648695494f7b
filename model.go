package mkvdemux

import "time"

// SegmentInfo is the Segment's \Info master decoded.
type SegmentInfo struct {
	SegmentUID      []byte
	TimecodeScale   uint64
	DurationTicks   float64
	HasDuration     bool
	DateUTC         time.Time
	HasDateUTC      bool
	Title           string
	MuxingApp       string
	WritingApp      string
}

// VideoParams is Track.Video decoded.
type VideoParams struct {
	PixelWidth     uint64
	PixelHeight    uint64
	DisplayWidth   uint64
	DisplayHeight  uint64
	FlagInterlaced bool
}

// AudioParams is Track.Audio decoded.
type AudioParams struct {
	SamplingFrequency float64
	Channels          uint64
	BitDepth          uint64
}

// Track is one TrackEntry decoded. CodecDelay/SeekPreRoll are carried for
// Opus-style tracks that need a decoder delay and a seek pre-roll applied.
type Track struct {
	Number             uint64
	UID                uint64
	Type               uint64
	Name               string
	Language           string
	FlagEnabled        bool
	FlagDefault        bool
	FlagLacing         bool
	DefaultDurationNs  uint64
	HasDefaultDuration bool
	CodecID            string
	CodecPrivate       []byte
	CodecName          string
	CodecDelay         time.Duration
	SeekPreRoll        time.Duration
	Video              *VideoParams
	Audio              *AudioParams
}

// SeekEntry is one SeekHead\Seek entry. Position is relative to the first
// byte of the Segment's payload.
type SeekEntry struct {
	ElementID uint32
	Position  uint64
}

// CueTrackPosition is one CueTrackPositions child of a CuePoint.
type CueTrackPosition struct {
	CueTrack           uint64
	CueClusterPosition uint64
}

// CuePoint is one Cues\CuePoint entry.
type CuePoint struct {
	CueTimeTicks uint64
	Positions    []CueTrackPosition
}

// MasterData is the aggregate the opening phase builds once and never
// mutates again: it's built during Open and is read-only after that,
// exclusively owning all SeekEntry, Track, and CuePoint records.
type MasterData struct {
	SegmentPayloadOffset uint64
	SeekHead             []SeekEntry
	Info                 SegmentInfo
	Tracks               []Track
	Cues                 []CuePoint
	FirstClusterOffset   uint64
	HasFirstCluster      bool

	// Chapters/Tags/Attachments are kept as raw trees only, never modeled:
	// nothing downstream interprets their contents.
	Chapters    []EbmlNode
	Tags        []EbmlNode
	Attachments []EbmlNode
}

// defaultTimecodeScale is the nanosecond value of one Segment tick when
// TimecodeScale is absent.
const defaultTimecodeScale = 1_000_000

// newMasterData returns a MasterData with TimecodeScale defaulted, ready to
// be filled in by applySegmentChild as each top-level Segment child arrives.
func newMasterData() *MasterData {
	return &MasterData{Info: SegmentInfo{TimecodeScale: defaultTimecodeScale}}
}

// applySegmentChild folds one parsed top-level Segment child into md.
// node.Type must be TypeMaster (SeekHead, Info, Tracks, Cues, Chapters,
// Tags, Attachments); anything else is ignored.
func applySegmentChild(md *MasterData, node EbmlNode) {
	switch node.ID {
	case idSeekHead:
		md.SeekHead = append(md.SeekHead, buildSeekHead(node)...)
	case idSegmentInfo:
		md.Info = buildSegmentInfo(node)
	case idTracks:
		md.Tracks = buildTracks(node)
	case idCues:
		md.Cues = buildCues(node)
	case idChapters:
		md.Chapters = node.Children
	case idTags:
		md.Tags = node.Children
	case idAttachments:
		md.Attachments = node.Children
	}
}

func buildSeekHead(node EbmlNode) []SeekEntry {
	var entries []SeekEntry
	for _, seek := range node.Children {
		if seek.ID != idSeek {
			continue
		}
		var e SeekEntry
		for _, child := range seek.Children {
			switch child.ID {
			case idSeekID:
				e.ElementID = uint32(decodeSeekID(child.Data))
			case idSeekPos:
				e.Position = child.AsUint()
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// decodeSeekID interprets SeekID's 1-4 raw bytes as the big-endian element id
// they encode.
func decodeSeekID(data []byte) uint64 {
	var v uint64
	for _, b := range data {
		v = (v << 8) | uint64(b)
	}
	return v
}

func buildSegmentInfo(node EbmlNode) SegmentInfo {
	info := SegmentInfo{TimecodeScale: defaultTimecodeScale}
	for _, child := range node.Children {
		switch child.ID {
		case idSegmentUID:
			info.SegmentUID = child.Data
		case idTimestampScale:
			info.TimecodeScale = child.AsUint()
		case idDuration:
			info.DurationTicks = child.AsFloat()
			info.HasDuration = true
		case idDateUTC:
			info.DateUTC = child.AsDate()
			info.HasDateUTC = true
		case idTitle:
			info.Title = child.AsString()
		case idMuxingApp:
			info.MuxingApp = child.AsString()
		case idWritingApp:
			info.WritingApp = child.AsString()
		}
	}
	return info
}

func buildTracks(node EbmlNode) []Track {
	var tracks []Track
	for _, entry := range node.Children {
		if entry.ID != idTrackEntry {
			continue
		}
		tracks = append(tracks, buildTrackEntry(entry))
	}
	return tracks
}

func buildTrackEntry(entry EbmlNode) Track {
	t := Track{FlagEnabled: true}
	for _, child := range entry.Children {
		switch child.ID {
		case idTrackNum:
			t.Number = child.AsUint()
		case idTrackUID:
			t.UID = child.AsUint()
		case idTrackType:
			t.Type = child.AsUint()
		case idTrackName:
			t.Name = child.AsString()
		case idLanguage:
			t.Language = child.AsString()
		case idFlagEnabled:
			t.FlagEnabled = child.AsUint() != 0
		case idFlagDefault:
			t.FlagDefault = child.AsUint() != 0
		case idFlagLacing:
			t.FlagLacing = child.AsUint() != 0
		case idDefaultDuration:
			t.DefaultDurationNs = child.AsUint()
			t.HasDefaultDuration = true
		case idCodecID:
			t.CodecID = child.AsString()
		case idCodecPriv:
			t.CodecPrivate = child.Data
		case idCodecName:
			t.CodecName = child.AsString()
		case idCodecDelay:
			t.CodecDelay = time.Duration(child.AsUint())
		case idSeekPreRoll:
			t.SeekPreRoll = time.Duration(child.AsUint())
		case idVideo:
			v := buildVideoParams(child)
			t.Video = &v
		case idAudio:
			a := buildAudioParams(child)
			t.Audio = &a
		}
	}
	return t
}

func buildVideoParams(node EbmlNode) VideoParams {
	var v VideoParams
	for _, child := range node.Children {
		switch child.ID {
		case idPixelWidth:
			v.PixelWidth = child.AsUint()
		case idPixelHeight:
			v.PixelHeight = child.AsUint()
		case idDisplayWidth:
			v.DisplayWidth = child.AsUint()
		case idDisplayHeight:
			v.DisplayHeight = child.AsUint()
		case idFlagInterlaced:
			v.FlagInterlaced = child.AsUint() != 0
		}
	}
	return v
}

func buildAudioParams(node EbmlNode) AudioParams {
	var a AudioParams
	for _, child := range node.Children {
		switch child.ID {
		case idSamplingFrequency:
			a.SamplingFrequency = child.AsFloat()
		case idChannels:
			a.Channels = child.AsUint()
		case idBitDepth:
			a.BitDepth = child.AsUint()
		}
	}
	if a.SamplingFrequency == 0 {
		a.SamplingFrequency = 8000
	}
	if a.Channels == 0 {
		a.Channels = 1
	}
	return a
}

func buildCues(node EbmlNode) []CuePoint {
	var cues []CuePoint
	for _, point := range node.Children {
		if point.ID != idCuePoint {
			continue
		}
		var cp CuePoint
		for _, child := range point.Children {
			switch child.ID {
			case idCueTime:
				cp.CueTimeTicks = child.AsUint()
			case idCueTrackPositions:
				cp.Positions = append(cp.Positions, buildCueTrackPosition(child))
			}
		}
		cues = append(cues, cp)
	}
	return cues
}

func buildCueTrackPosition(node EbmlNode) CueTrackPosition {
	var p CueTrackPosition
	for _, child := range node.Children {
		switch child.ID {
		case idCueTrack:
			p.CueTrack = child.AsUint()
		case idCueClusterPosition:
			p.CueClusterPosition = child.AsUint()
		}
	}
	return p
}

// schemaDiscoveryComplete reports whether Info, Tracks, and (when SeekHead
// points at Cues) Cues have all been observed.
func schemaDiscoveryComplete(md *MasterData, haveInfo, haveTracks bool) bool {
	if !haveInfo || !haveTracks {
		return false
	}
	if len(md.Cues) > 0 {
		return true
	}
	for _, e := range md.SeekHead {
		if e.ElementID == idCues {
			return false
		}
	}
	return true
}

// findSeekPoint implements the cue-based seek tie-break rule: the last
// CuePoint sharing the maximal cue_time_ticks <= targetTicks,
// or the first CuePoint if none precedes the target. It returns ok=false only
// when cues is empty.
func findSeekPoint(cues []CuePoint, targetTicks uint64) (CuePoint, bool) {
	if len(cues) == 0 {
		return CuePoint{}, false
	}
	best := -1
	for i, c := range cues {
		if c.CueTimeTicks <= targetTicks {
			if best == -1 || cues[i].CueTimeTicks >= cues[best].CueTimeTicks {
				best = i
			}
		}
	}
	if best == -1 {
		return cues[0], true
	}
	return cues[best], true
}
