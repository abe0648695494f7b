package mkvdemux

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSegmentInfo_DefaultsTimecodeScale(t *testing.T) {
	node := EbmlNode{ID: idSegmentInfo, Type: TypeMaster, Children: []EbmlNode{
		{ID: idTitle, Type: TypeTextUTF8, Data: []byte("a movie")},
	}}
	info := buildSegmentInfo(node)
	require.Equal(t, uint64(defaultTimecodeScale), info.TimecodeScale)
	require.Equal(t, "a movie", info.Title)
	require.False(t, info.HasDuration)
}

func TestBuildTrackEntry_VideoAndAudio(t *testing.T) {
	video := EbmlNode{ID: idVideo, Type: TypeMaster, Children: []EbmlNode{
		{ID: idPixelWidth, Type: TypeUnsigned, Data: []byte{0x02, 0x80}},
		{ID: idPixelHeight, Type: TypeUnsigned, Data: []byte{0x01, 0xE0}},
	}}
	entry := EbmlNode{ID: idTrackEntry, Type: TypeMaster, Children: []EbmlNode{
		{ID: idTrackNum, Type: TypeUnsigned, Data: []byte{0x01}},
		{ID: idTrackType, Type: TypeUnsigned, Data: []byte{0x01}},
		{ID: idCodecID, Type: TypeTextASCII, Data: []byte("V_MPEG1")},
		video,
	}}

	track := buildTrackEntry(entry)
	require.Equal(t, uint64(1), track.Number)
	require.Equal(t, uint64(TrackTypeVideo), track.Type)
	require.Equal(t, "V_MPEG1", track.CodecID)
	require.NotNil(t, track.Video)
	require.EqualValues(t, 640, track.Video.PixelWidth)
	require.EqualValues(t, 480, track.Video.PixelHeight)
	require.Nil(t, track.Audio)
}

func TestBuildCues_TimeAndPositions(t *testing.T) {
	cuesNode := EbmlNode{ID: idCues, Type: TypeMaster, Children: []EbmlNode{
		{ID: idCuePoint, Type: TypeMaster, Children: []EbmlNode{
			{ID: idCueTime, Type: TypeUnsigned, Data: []byte{0x0A}},
			{ID: idCueTrackPositions, Type: TypeMaster, Children: []EbmlNode{
				{ID: idCueTrack, Type: TypeUnsigned, Data: []byte{0x01}},
				{ID: idCueClusterPosition, Type: TypeUnsigned, Data: []byte{0x00, 0x10}},
			}},
		}},
	}}

	cues := buildCues(cuesNode)
	require.Len(t, cues, 1)
	require.EqualValues(t, 10, cues[0].CueTimeTicks)
	require.Len(t, cues[0].Positions, 1)
	require.EqualValues(t, 1, cues[0].Positions[0].CueTrack)
	require.EqualValues(t, 16, cues[0].Positions[0].CueClusterPosition)
}

// Property 4: cue-seek monotonicity and the documented tie-break rule.
func TestFindSeekPoint_TieBreakAndMonotonicity(t *testing.T) {
	cues := []CuePoint{
		{CueTimeTicks: 0, Positions: []CueTrackPosition{{CueClusterPosition: 100}}},
		{CueTimeTicks: 1000, Positions: []CueTrackPosition{{CueClusterPosition: 200}}},
		{CueTimeTicks: 1000, Positions: []CueTrackPosition{{CueClusterPosition: 300}}}, // duplicate time, later index wins
		{CueTimeTicks: 2000, Positions: []CueTrackPosition{{CueClusterPosition: 400}}},
	}

	cp, ok := findSeekPoint(cues, 1000)
	require.True(t, ok)
	require.Equal(t, uint64(300), cp.Positions[0].CueClusterPosition, "tie-break must pick the later CuePoint sharing the max time")

	cp, ok = findSeekPoint(cues, 1500)
	require.True(t, ok)
	require.Equal(t, uint64(300), cp.Positions[0].CueClusterPosition)

	cp, ok = findSeekPoint(cues, 0)
	require.True(t, ok)
	require.Equal(t, uint64(100), cp.Positions[0].CueClusterPosition)

	cp, ok = findSeekPoint(cues, 3000)
	require.True(t, ok)
	require.Equal(t, uint64(400), cp.Positions[0].CueClusterPosition, "choosing a larger t must never return an earlier position")
}

func TestFindSeekPoint_NoPrecedingCueReturnsFirst(t *testing.T) {
	cues := []CuePoint{
		{CueTimeTicks: 500, Positions: []CueTrackPosition{{CueClusterPosition: 50}}},
		{CueTimeTicks: 900, Positions: []CueTrackPosition{{CueClusterPosition: 90}}},
	}
	cp, ok := findSeekPoint(cues, 10)
	require.True(t, ok)
	require.Equal(t, uint64(50), cp.Positions[0].CueClusterPosition)
}

func TestFindSeekPoint_EmptyCues(t *testing.T) {
	_, ok := findSeekPoint(nil, 100)
	require.False(t, ok)
}

func TestSchemaDiscoveryComplete(t *testing.T) {
	md := newMasterData()
	require.False(t, schemaDiscoveryComplete(md, false, false))
	require.False(t, schemaDiscoveryComplete(md, true, false))
	require.True(t, schemaDiscoveryComplete(md, true, true), "no SeekHead entry for Cues means discovery doesn't wait on it")

	md.SeekHead = append(md.SeekHead, SeekEntry{ElementID: idCues, Position: 10})
	require.False(t, schemaDiscoveryComplete(md, true, true), "SeekHead points at Cues but none observed yet")

	md.Cues = append(md.Cues, CuePoint{})
	require.True(t, schemaDiscoveryComplete(md, true, true))
}
