package mkvdemux

// EBML/Matroska element IDs: EBML header fields, Segment and its children
// (SeekHead, Info, Tracks, Cluster/Block, Cues, Chapters/Tags/Attachments),
// and a ContentEncodings skeleton parsed as MASTER only, never interpreted
// (encryption and signature validation aren't implemented).
const (
	// EBML Header elements
	idEBMLHeader             = 0x1A45DFA3
	idEBMLVersion            = 0x4286
	idEBMLReadVersion        = 0x42F7
	idEBMLMaxIDLength        = 0x42F2
	idEBMLMaxSizeLength      = 0x42F3
	idEBMLDocType            = 0x4282
	idEBMLDocTypeVersion     = 0x4287
	idEBMLDocTypeReadVersion = 0x4285

	// Segment
	idSegment = 0x18538067

	// Meta Seek Information
	idSeekHead = 0x114D9B74
	idSeek     = 0x4DBB
	idSeekID   = 0x53AB
	idSeekPos  = 0x53AC

	// Segment Information
	idSegmentInfo     = 0x1549A966
	idSegmentUID      = 0x73A4
	idSegmentFilename = 0x7384
	idPrevUID         = 0x3CB923
	idPrevFilename    = 0x3C83AB
	idNextUID         = 0x3EB923
	idNextFilename    = 0x3E83BB
	idSegmentFamily   = 0x4444
	idTimestampScale  = 0x2AD7B1
	idDuration        = 0x4489
	idDateUTC         = 0x4461
	idTitle           = 0x7BA9
	idMuxingApp       = 0x4D80
	idWritingApp      = 0x5741

	// Tracks
	idTracks          = 0x1654AE6B
	idTrackEntry      = 0xAE
	idTrackNum        = 0xD7
	idTrackUID        = 0x73C5
	idTrackType       = 0x83
	idTrackName       = 0x536E
	idLanguage        = 0x22B59C
	idCodecID         = 0x86
	idCodecPriv       = 0x63A2
	idCodecName       = 0x258688
	idFlagEnabled     = 0xB9
	idFlagDefault     = 0x88
	idFlagLacing      = 0x9C
	idDefaultDuration = 0x23E383
	idCodecDelay      = 0x56AA
	idSeekPreRoll     = 0x56BB
	idVideo           = 0xE0
	idAudio           = 0xE1

	// Video
	idFlagInterlaced = 0x9A
	idPixelWidth     = 0xB0
	idPixelHeight    = 0xBA
	idDisplayWidth   = 0x54B0
	idDisplayHeight  = 0x54BA

	// Audio
	idSamplingFrequency       = 0xB5
	idOutputSamplingFrequency = 0x78B5
	idChannels                = 0x9F
	idBitDepth                = 0x6264

	// Cluster / Block
	idCluster       = 0x1F43B675
	idTimestamp     = 0xE7
	idSimpleBlock   = 0xA3
	idBlockGroup    = 0xA0
	idBlock         = 0xA1
	idBlockDuration = 0x9B
	idReferenceBlock = 0xFB

	// Cues
	idCues                 = 0x1C53BB6B
	idCuePoint             = 0xBB
	idCueTime              = 0xB3
	idCueTrackPositions    = 0xB7
	idCueTrack             = 0xF7
	idCueClusterPosition   = 0xF1

	// Chapters / Tags / Attachments: parsed as generic trees only.
	idChapters    = 0x1043A770
	idTags        = 0x1254C367
	idAttachments = 0x1941A469

	// ContentEncodings skeleton: parsed as MASTER, never interpreted.
	idContentEncodings = 0x6D80
	idContentEncoding  = 0x6240
)

// Track types, per the Matroska TrackType enum. Only Video/Audio/Subtitle
// get dedicated Track fields; the rest are carried so TrackEntry.TrackType
// round-trips regardless of which type it names.
const (
	TrackTypeVideo       = 1
	TrackTypeAudio       = 2
	TrackTypeComplex     = 3
	TrackTypeLogo        = 0x10
	TrackTypeSubtitle    = 17
	TrackTypeButtons     = 0x12
	TrackTypeControl     = 0x20
	TrackTypeMetadata    = 0x21
)
