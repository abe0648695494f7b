package mkvdemux

// ElementType is the semantic type a schema entry assigns to an element ID.
type ElementType int

const (
	// TypeUnknown marks an element ID absent from the schema table. It is
	// never returned by schemaLookup (which reports ok=false instead); it
	// exists so zero-value ElementType prints sensibly.
	TypeUnknown ElementType = iota
	TypeMaster
	TypeUnsigned
	TypeSigned
	TypeTextASCII
	TypeTextUTF8
	TypeBinary
	TypeFloat
	TypeDate
	// TypeStreamed marks an "open-ended container" (Segment, Cluster):
	// known to be a master, but never recursed into by readTree. The
	// streaming controller handles it directly instead.
	TypeStreamed
)

func (t ElementType) String() string {
	switch t {
	case TypeMaster:
		return "Master"
	case TypeUnsigned:
		return "Unsigned"
	case TypeSigned:
		return "Signed"
	case TypeTextASCII:
		return "TextAscii"
	case TypeTextUTF8:
		return "TextUtf8"
	case TypeBinary:
		return "Binary"
	case TypeFloat:
		return "Float"
	case TypeDate:
		return "Date"
	case TypeStreamed:
		return "Streamed"
	default:
		return "Unknown"
	}
}

type schemaEntry struct {
	name string
	typ  ElementType
}

// schemaTable is the static, immutable id -> (name, type) mapping: built
// once, shared by reference, no per-lookup allocation.
var schemaTable = map[uint32]schemaEntry{
	idEBMLHeader:             {"EBML", TypeMaster},
	idEBMLVersion:            {"EBMLVersion", TypeUnsigned},
	idEBMLReadVersion:        {"EBMLReadVersion", TypeUnsigned},
	idEBMLMaxIDLength:        {"EBMLMaxIDLength", TypeUnsigned},
	idEBMLMaxSizeLength:      {"EBMLMaxSizeLength", TypeUnsigned},
	idEBMLDocType:            {"DocType", TypeTextASCII},
	idEBMLDocTypeVersion:     {"DocTypeVersion", TypeUnsigned},
	idEBMLDocTypeReadVersion: {"DocTypeReadVersion", TypeUnsigned},

	idSegment: {"Segment", TypeStreamed},

	idSeekHead: {"SeekHead", TypeMaster},
	idSeek:     {"Seek", TypeMaster},
	idSeekID:   {"SeekID", TypeBinary},
	idSeekPos:  {"SeekPosition", TypeUnsigned},

	idSegmentInfo:     {"Info", TypeMaster},
	idSegmentUID:      {"SegmentUID", TypeBinary},
	idSegmentFilename: {"SegmentFilename", TypeTextUTF8},
	idPrevUID:         {"PrevUID", TypeBinary},
	idPrevFilename:    {"PrevFilename", TypeTextUTF8},
	idNextUID:         {"NextUID", TypeBinary},
	idNextFilename:    {"NextFilename", TypeTextUTF8},
	idSegmentFamily:   {"SegmentFamily", TypeBinary},
	idTimestampScale:  {"TimecodeScale", TypeUnsigned},
	idDuration:        {"Duration", TypeFloat},
	idDateUTC:         {"DateUTC", TypeDate},
	idTitle:           {"Title", TypeTextUTF8},
	idMuxingApp:       {"MuxingApp", TypeTextUTF8},
	idWritingApp:      {"WritingApp", TypeTextUTF8},

	idTracks:          {"Tracks", TypeMaster},
	idTrackEntry:      {"TrackEntry", TypeMaster},
	idTrackNum:        {"TrackNumber", TypeUnsigned},
	idTrackUID:        {"TrackUID", TypeUnsigned},
	idTrackType:       {"TrackType", TypeUnsigned},
	idTrackName:       {"Name", TypeTextUTF8},
	idLanguage:        {"Language", TypeTextASCII},
	idCodecID:         {"CodecID", TypeTextASCII},
	idCodecPriv:       {"CodecPrivate", TypeBinary},
	idCodecName:       {"CodecName", TypeTextUTF8},
	idFlagEnabled:     {"FlagEnabled", TypeUnsigned},
	idFlagDefault:     {"FlagDefault", TypeUnsigned},
	idFlagLacing:      {"FlagLacing", TypeUnsigned},
	idDefaultDuration: {"DefaultDuration", TypeUnsigned},
	idCodecDelay:      {"CodecDelay", TypeUnsigned},
	idSeekPreRoll:     {"SeekPreRoll", TypeUnsigned},
	idVideo:           {"Video", TypeMaster},
	idAudio:           {"Audio", TypeMaster},

	idFlagInterlaced: {"FlagInterlaced", TypeUnsigned},
	idPixelWidth:     {"PixelWidth", TypeUnsigned},
	idPixelHeight:    {"PixelHeight", TypeUnsigned},
	idDisplayWidth:   {"DisplayWidth", TypeUnsigned},
	idDisplayHeight:  {"DisplayHeight", TypeUnsigned},

	idSamplingFrequency:       {"SamplingFrequency", TypeFloat},
	idOutputSamplingFrequency: {"OutputSamplingFrequency", TypeFloat},
	idChannels:                {"Channels", TypeUnsigned},
	idBitDepth:                {"BitDepth", TypeUnsigned},

	idCluster:        {"Cluster", TypeStreamed},
	idTimestamp:      {"Timestamp", TypeUnsigned},
	idSimpleBlock:    {"SimpleBlock", TypeBinary},
	idBlockGroup:     {"BlockGroup", TypeMaster},
	idBlock:          {"Block", TypeBinary},
	idBlockDuration:  {"BlockDuration", TypeUnsigned},
	idReferenceBlock: {"ReferenceBlock", TypeSigned},

	idCues:               {"Cues", TypeMaster},
	idCuePoint:           {"CuePoint", TypeMaster},
	idCueTime:            {"CueTime", TypeUnsigned},
	idCueTrackPositions:  {"CueTrackPositions", TypeMaster},
	idCueTrack:           {"CueTrack", TypeUnsigned},
	idCueClusterPosition: {"CueClusterPosition", TypeUnsigned},

	idChapters:    {"Chapters", TypeMaster},
	idTags:        {"Tags", TypeMaster},
	idAttachments: {"Attachments", TypeMaster},

	idContentEncodings: {"ContentEncodings", TypeMaster},
	idContentEncoding:  {"ContentEncoding", TypeMaster},
}

// schemaLookup returns the (name, type) of a known element ID. Unknown IDs
// return ok=false; callers treat these as opaque BINARY rather than
// aborting the parse.
func schemaLookup(id uint32) (schemaEntry, bool) {
	e, ok := schemaTable[id]
	return e, ok
}
