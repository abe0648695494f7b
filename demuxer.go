package mkvdemux

import (
	"context"
	"os"
)

// Packet is a convenience view of one delivered frame, pairing a
// FrameDescriptor with its payload bytes copied out of the window, for
// callers that want a simple pull API instead of driving
// NextFrame/FramePayload/the state machine directly.
type Packet struct {
	TrackNumber    uint64
	TimestampTicks int64
	DurationTicks  uint64
	HasDuration    bool
	IsKeyframe     bool
	Data           []byte
}

// Demuxer is a thin, always-Started wrapper over Controller, offering a
// one-shot-parser-style convenience API (GetNumTracks, GetTrackInfo,
// GetFileInfo, GetCues, ReadPacket) for callers who don't need direct
// access to Pause/Stop/seek-driven Start.
type Demuxer struct {
	ctrl *Controller
}

// NewDemuxer opens f (a seekable file) and blocks until the Opening phase
// completes.
func NewDemuxer(ctx context.Context, f *os.File, cfg Config) (*Demuxer, error) {
	ctrl := NewController(NewFileByteSource(f), cfg)
	if err := ctrl.Open(ctx); err != nil {
		return nil, err
	}
	if err := ctrl.Start(ctx, 0); err != nil {
		return nil, err
	}
	return &Demuxer{ctrl: ctrl}, nil
}

// NewStreamingDemuxer opens a forward-only source. No cue-based seeking is
// possible since StreamByteSource rejects any Seek that isn't a no-op.
func NewStreamingDemuxer(ctx context.Context, r interface{ Read([]byte) (int, error) }, cfg Config) (*Demuxer, error) {
	ctrl := NewController(NewStreamByteSource(readerAdapter{r}), cfg)
	if err := ctrl.Open(ctx); err != nil {
		return nil, err
	}
	if err := ctrl.Start(ctx, 0); err != nil {
		return nil, err
	}
	return &Demuxer{ctrl: ctrl}, nil
}

type readerAdapter struct {
	r interface{ Read([]byte) (int, error) }
}

func (a readerAdapter) Read(p []byte) (int, error) { return a.r.Read(p) }

// Controller exposes the underlying state machine for callers who need
// Pause/Stop/seek-driven Start rather than this façade's always-Started
// convenience mode.
func (d *Demuxer) Controller() *Controller { return d.ctrl }

// GetNumTracks returns the number of tracks the Tracks element declared.
func (d *Demuxer) GetNumTracks() int { return len(d.ctrl.md.Tracks) }

// GetTrackInfo returns the track at index, in TrackEntry order.
func (d *Demuxer) GetTrackInfo(index int) (Track, bool) {
	if index < 0 || index >= len(d.ctrl.md.Tracks) {
		return Track{}, false
	}
	return d.ctrl.md.Tracks[index], true
}

// GetFileInfo returns the decoded Segment \Info.
func (d *Demuxer) GetFileInfo() SegmentInfo { return d.ctrl.md.Info }

// GetCues returns the decoded Cues index, empty if the file has none.
func (d *Demuxer) GetCues() []CuePoint { return d.ctrl.md.Cues }

// MasterData returns the full opening-phase aggregate.
func (d *Demuxer) MasterData() *MasterData { return d.ctrl.MasterData() }

// ReadPacket pulls the next frame and copies its payload out of the window
// so the returned Packet remains valid past the next ReadPacket call: the
// window may compact or advance once this call returns.
func (d *Demuxer) ReadPacket(ctx context.Context) (Packet, error) {
	fd, err := d.ctrl.NextFrame(ctx)
	if err != nil {
		return Packet{}, err
	}
	payload := d.ctrl.FramePayload(fd)
	data := make([]byte, len(payload))
	copy(data, payload)
	return Packet{
		TrackNumber:    fd.TrackNumber,
		TimestampTicks: fd.TimestampTicks,
		DurationTicks:  fd.DurationTicks,
		HasDuration:    fd.HasDuration,
		IsKeyframe:     fd.IsKeyframe,
		Data:           data,
	}, nil
}

// Seek requests a cue-based jump to startPos100ns (100-ns media units).
func (d *Demuxer) Seek(ctx context.Context, startPos100ns uint64) error {
	if err := d.ctrl.Stop(); err != nil {
		return err
	}
	return d.ctrl.Start(ctx, startPos100ns)
}

// Close releases no resources of its own; callers remain responsible for
// closing the underlying *os.File or io.Reader they constructed the
// ByteSource from.
func (d *Demuxer) Close() {
	d.ctrl.Shutdown()
}
