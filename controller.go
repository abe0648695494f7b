package mkvdemux

import (
	"context"
	"sync/atomic"

	"github.com/pion/logging"
	"github.com/pkg/errors"
)

// State is the streaming controller's state machine position:
// Invalid -> Opening -> Stopped -> Started <-> Paused -> ShutDown.
type State int

const (
	StateInvalid State = iota
	StateOpening
	StateStopped
	StateStarted
	StatePaused
	StateShutDown
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "Opening"
	case StateStopped:
		return "Stopped"
	case StateStarted:
		return "Started"
	case StatePaused:
		return "Paused"
	case StateShutDown:
		return "ShutDown"
	default:
		return "Invalid"
	}
}

// Controller drives the two-phase open -> stream state machine: Open parses
// the EBML/Segment header and enough Segment-level children to locate the
// first Cluster, then NextFrame scans forward one element at a time, pushing
// FrameDescriptors onto a ring as blocks are found. The split mirrors the
// difference between "may still seek to find missing metadata" (Opening)
// and "scans strictly forward through Clusters" (Started), and lets either
// a fully seekable file or a forward-only stream drive the same state
// machine through the ByteSource interface.
type Controller struct {
	cfg    Config
	source ByteSource
	log    logging.LeveledLogger

	window *readWindow
	absPos uint64 // absolute file offset of window's first live byte

	state   State
	restart atomic.Uint64

	md            *MasterData
	haveInfo      bool
	haveTracks    bool
	trackByNumber map[uint64]*Track

	ring                   frameRing
	eos                    bool
	inCluster              bool
	clusterEndKnown        bool
	clusterEnd             uint64
	currentClusterTimecode uint64
}

// NewController constructs a Controller in state Invalid.
func NewController(source ByteSource, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:    cfg,
		source: source,
		log:    cfg.Logger,
		window: newReadWindow(cfg.InitialWindowCapacity),
		md:     newMasterData(),
		state:  StateInvalid,
	}
}

// State reports the controller's current state.
func (c *Controller) State() State { return c.state }

// MasterData returns the aggregate built during Open. Callers must treat it
// as read-only once Open returns.
func (c *Controller) MasterData() *MasterData { return c.md }

// currentTag returns the restart counter value new I/O operations should be
// tagged with.
func (c *Controller) currentTag() uint64 { return c.restart.Load() }

// ensureBuffered grows the window until it holds at least n live bytes or
// the ByteSource reports EOS. Each Read is sized to at least ReadChunkSize
// bytes so a run of small requests (a VInt peek, then its payload, then the
// next header) doesn't degrade into many tiny syscalls against the
// ByteSource.
func (c *Controller) ensureBuffered(ctx context.Context, n int) error {
	tag := c.currentTag()
	for c.window.size() < n {
		want := n - c.window.size()
		if want < c.cfg.ReadChunkSize {
			want = c.cfg.ReadChunkSize
		}
		c.window.reserve(want)
		read, gotTag, err := c.source.Read(ctx, c.window.spare(), tag)
		if gotTag != tag {
			return errors.Wrap(ErrCancelled, "mkvdemux: stale read discarded")
		}
		if err != nil {
			return err
		}
		if read == 0 {
			c.eos = true
			return ErrEndOfStream
		}
		c.window.moveEnd(read)
	}
	return nil
}

// advance consumes n bytes from the front of the window, keeping absPos in
// sync.
func (c *Controller) advance(n int) {
	c.window.moveStart(n)
	c.absPos += uint64(n)
}

// jumpTo repositions the ByteSource and discards the window's buffered
// bytes, since they no longer sit adjacent to the new read position. It also
// bumps the restart counter so any outstanding read tagged with the old
// counter is discarded on arrival instead of corrupting the freshly seeked
// window.
func (c *Controller) jumpTo(ctx context.Context, absOffset uint64) error {
	c.restart.Add(1)
	if err := c.source.Seek(ctx, absOffset); err != nil {
		return err
	}
	c.window = newReadWindow(c.cfg.InitialWindowCapacity)
	c.absPos = absOffset
	c.inCluster = false
	c.clusterEndKnown = false
	return nil
}

// readBoundedElement ensures a just-peeked bounded element's full payload is
// buffered and returns it, without consuming the window; the caller
// consumes headerBytes+size once it has finished using the slice.
func (c *Controller) readBoundedElement(ctx context.Context, hdr ElementHeader) ([]byte, error) {
	if hdr.SizeUnknown {
		return nil, errors.Wrap(ErrFormat, "mkvdemux: unknown-length element in bounded context")
	}
	total := hdr.HeaderBytes + int(hdr.Size)
	if err := c.ensureBuffered(ctx, total); err != nil {
		return nil, err
	}
	return c.window.data()[hdr.HeaderBytes:total], nil
}

// Open drives the Opening phase to completion: it parses the EBML header,
// the Segment header, and Segment children (SeekHead, Info, Tracks, Cues,
// Chapters, Tags, Attachments) until Info/Tracks/(Cues if referenced) have
// all been observed and the first Cluster is in view, or until an
// unrecoverable error/EOS occurs.
func (c *Controller) Open(ctx context.Context) error {
	if c.state != StateInvalid {
		return errors.New("mkvdemux: Open called outside state Invalid")
	}
	c.state = StateOpening

	if err := c.parseEBMLHeader(ctx); err != nil {
		return err
	}
	if err := c.parseSegmentHeader(ctx); err != nil {
		return err
	}

	for {
		done, err := c.openingStep(ctx)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	c.buildTrackIndex()
	c.state = StateStopped
	return nil
}

func (c *Controller) parseEBMLHeader(ctx context.Context) error {
	if err := c.ensureBuffered(ctx, maxVIntWidth*2); err != nil {
		return err
	}
	hdr, err := peekElementHeader(c.window.data())
	if err != nil {
		return err
	}
	if hdr.ID != idEBMLHeader {
		return errors.Wrap(ErrFormat, "mkvdemux: file does not start with an EBML header")
	}
	if _, err := c.readBoundedElement(ctx, hdr); err != nil {
		return err
	}
	c.advance(hdr.HeaderBytes + int(hdr.Size))
	return nil
}

func (c *Controller) parseSegmentHeader(ctx context.Context) error {
	if err := c.ensureBuffered(ctx, maxVIntWidth*2); err != nil {
		return err
	}
	hdr, err := peekElementHeader(c.window.data())
	if err != nil {
		return err
	}
	if hdr.ID != idSegment {
		return errors.Wrap(ErrFormat, "mkvdemux: expected Segment element")
	}
	c.advance(hdr.HeaderBytes)
	c.md.SegmentPayloadOffset = c.absPos
	return nil
}

// openingStep processes exactly one Segment-level child. done is true once
// the first Cluster is in view and schema discovery is satisfied (or no
// more bytes remain to find one).
func (c *Controller) openingStep(ctx context.Context) (bool, error) {
	if err := c.ensureBuffered(ctx, maxVIntWidth*2); err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return true, nil
		}
		return false, err
	}
	hdr, err := peekElementHeader(c.window.data())
	if err != nil {
		return false, err
	}

	if hdr.ID == idCluster {
		if !schemaDiscoveryComplete(c.md, c.haveInfo, c.haveTracks) {
			if jumped, err := c.jumpToMissingSection(ctx); err != nil {
				return false, err
			} else if jumped {
				return false, nil
			}
			// Nothing in SeekHead points at what's missing (or there is no
			// SeekHead at all); give up waiting and enter streaming with
			// whatever metadata was found before the first Cluster.
		}
		c.md.FirstClusterOffset = c.absPos
		c.md.HasFirstCluster = true
		return true, nil
	}

	entry, known := schemaLookup(hdr.ID)
	if !known || entry.typ != TypeMaster {
		// Unknown or non-master Segment-level child: skip it. readTree
		// applies the same unknown-id skip rule one level in, for children
		// of the masters handled below.
		if hdr.SizeUnknown {
			return false, errors.Wrap(ErrFormat, "mkvdemux: unknown-length element at Segment level")
		}
		if err := c.ensureBuffered(ctx, hdr.HeaderBytes+int(hdr.Size)); err != nil {
			return false, err
		}
		c.advance(hdr.HeaderBytes + int(hdr.Size))
		return false, nil
	}

	payload, err := c.readBoundedElement(ctx, hdr)
	if err != nil {
		return false, err
	}
	children, err := readTree(payload, uint64(len(payload)))
	if err != nil && !IsRecoverable(err) {
		return false, err
	}
	node := EbmlNode{ID: hdr.ID, Name: entry.name, Type: TypeMaster, Children: children}
	applySegmentChild(c.md, node)
	switch hdr.ID {
	case idSegmentInfo:
		c.haveInfo = true
	case idTracks:
		c.haveTracks = true
	}
	c.advance(hdr.HeaderBytes + int(hdr.Size))
	return false, nil
}

// jumpToMissingSection handles the SeekHead-driven jump: if Info, Tracks, or
// (when referenced) Cues is still missing and SeekHead names its offset,
// seek there and resume scanning from that offset instead of entering the
// streaming phase.
func (c *Controller) jumpToMissingSection(ctx context.Context) (bool, error) {
	var want uint32
	switch {
	case !c.haveInfo:
		want = idSegmentInfo
	case !c.haveTracks:
		want = idTracks
	default:
		want = idCues
	}
	for _, e := range c.md.SeekHead {
		if e.ElementID == want {
			target := c.md.SegmentPayloadOffset + e.Position
			if target == c.absPos {
				continue
			}
			if err := c.jumpTo(ctx, target); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (c *Controller) buildTrackIndex() {
	c.trackByNumber = make(map[uint64]*Track, len(c.md.Tracks))
	for i := range c.md.Tracks {
		c.trackByNumber[c.md.Tracks[i].Number] = &c.md.Tracks[i]
	}
}

// Start transitions Stopped/Paused into Started. A non-zero startPos100ns
// (100-ns media units) triggers a cue-based seek to the nearest indexed
// position at or before that time.
func (c *Controller) Start(ctx context.Context, startPos100ns uint64) error {
	if c.state != StateStopped && c.state != StatePaused {
		return errors.Errorf("mkvdemux: Start called in state %s", c.state)
	}
	if startPos100ns > 0 {
		if err := c.seekToMediaTime(ctx, startPos100ns); err != nil {
			return err
		}
	}
	c.state = StateStarted
	return nil
}

// seekToMediaTime converts startPos100ns to ticks via TimecodeScale, finds
// the seek point with findSeekPoint's tie-break rule, and jumps to the
// corresponding Cluster.
func (c *Controller) seekToMediaTime(ctx context.Context, startPos100ns uint64) error {
	scale := c.md.Info.TimecodeScale
	if scale == 0 {
		scale = defaultTimecodeScale
	}
	targetTicks := (startPos100ns * 100) / scale
	cue, ok := findSeekPoint(c.md.Cues, targetTicks)
	if !ok {
		return nil
	}
	if len(cue.Positions) == 0 {
		return nil
	}
	target := c.md.SegmentPayloadOffset + cue.Positions[0].CueClusterPosition
	if err := c.jumpTo(ctx, target); err != nil {
		return err
	}
	c.ring = frameRing{}
	return nil
}

// Pause transitions Started into Paused.
func (c *Controller) Pause() error {
	if c.state != StateStarted {
		return errors.Errorf("mkvdemux: Pause called in state %s", c.state)
	}
	c.state = StatePaused
	return nil
}

// Stop transitions Started/Paused back into Stopped.
func (c *Controller) Stop() error {
	if c.state != StateStarted && c.state != StatePaused {
		return errors.Errorf("mkvdemux: Stop called in state %s", c.state)
	}
	c.state = StateStopped
	return nil
}

// Shutdown is terminal: it bumps the restart counter (discarding any
// outstanding read/seek) and moves to ShutDown.
func (c *Controller) Shutdown() {
	c.restart.Add(1)
	c.state = StateShutDown
}

// NextFrame pulls the next FrameDescriptor, blocking internally until a
// frame is ready, EOS is reached, or ctx is cancelled. The only place it can
// block is a ByteSource read.
func (c *Controller) NextFrame(ctx context.Context) (FrameDescriptor, error) {
	if c.state != StateStarted {
		return FrameDescriptor{}, errors.Errorf("mkvdemux: NextFrame called in state %s", c.state)
	}
	for {
		if fd, ok := c.ring.pop(); ok {
			return fd, nil
		}
		if c.eos {
			return FrameDescriptor{}, ErrEndOfStream
		}
		if err := c.streamingStep(ctx); err != nil {
			if errors.Is(err, ErrEndOfStream) {
				continue // let the ring-drain / eos check above handle it
			}
			return FrameDescriptor{}, err
		}
	}
}

// FramePayload returns the frame's bytes within the window. It is valid
// only until the next NextFrame call or state transition: the window may
// compact or advance past it afterward.
func (c *Controller) FramePayload(fd FrameDescriptor) []byte {
	return c.window.buf[fd.PayloadOffset : fd.PayloadOffset+fd.PayloadLen]
}

// streamingStep advances the Segment-level scan by exactly one element:
// locate the next Cluster/Timestamp/SimpleBlock/BlockGroup, update state,
// and push any resulting FrameDescriptors onto the ring.
func (c *Controller) streamingStep(ctx context.Context) error {
	if err := c.ensureBuffered(ctx, maxVIntWidth*2); err != nil {
		if !errors.Is(err, ErrEndOfStream) || c.window.size() == 0 {
			if errors.Is(err, ErrEndOfStream) {
				c.eos = true
			}
			return err
		}
		// The source is exhausted but the window still holds the file's
		// last, short elements: parse them from what is already buffered.
		c.eos = false
	}
	hdr, err := peekElementHeader(c.window.data())
	if err != nil {
		if errors.Is(err, errNeedMoreData) {
			// Only reachable at end of input: a truncated trailing header.
			c.eos = true
			return ErrEndOfStream
		}
		return err
	}

	switch hdr.ID {
	case idCluster:
		c.advance(hdr.HeaderBytes)
		c.inCluster = true
		c.currentClusterTimecode = 0
		if hdr.SizeUnknown {
			c.clusterEndKnown = false
		} else {
			c.clusterEndKnown = true
			c.clusterEnd = c.absPos + hdr.Size
		}
		return nil
	case idTimestamp:
		payload, err := c.readBoundedElement(ctx, hdr)
		if err != nil {
			return err
		}
		c.currentClusterTimecode = EbmlNode{Data: payload}.AsUint()
		c.advance(hdr.HeaderBytes + int(hdr.Size))
		return nil
	case idSimpleBlock:
		return c.consumeBlock(ctx, hdr, false)
	case idBlockGroup:
		return c.consumeBlockGroup(ctx, hdr)
	default:
		if c.clusterEndKnown && c.absPos+uint64(hdr.HeaderBytes) >= c.clusterEnd {
			c.inCluster = false
		}
		if hdr.SizeUnknown {
			return errors.Wrap(ErrFormat, "mkvdemux: unknown-length element inside Cluster")
		}
		if err := c.ensureBuffered(ctx, hdr.HeaderBytes+int(hdr.Size)); err != nil {
			return err
		}
		c.advance(hdr.HeaderBytes + int(hdr.Size))
		return nil
	}
}

func (c *Controller) consumeBlock(ctx context.Context, hdr ElementHeader, fromGroup bool) error {
	payload, err := c.readBoundedElement(ctx, hdr)
	if err != nil {
		return err
	}
	pb, err := parseBlockPayload(payload)
	if err != nil {
		if IsRecoverable(err) {
			c.log.Warnf("mkvdemux: skipping block: %v", err)
			c.advance(hdr.HeaderBytes + int(hdr.Size))
			return nil
		}
		return err
	}
	track := c.trackByNumber[pb.TrackNumber]
	// Frame offsets from buildFrameDescriptors are relative to the element
	// start (id+size header included); pushFrames rebases them to an
	// absolute window offset once advance() has moved window.begin past
	// this element. A SimpleBlock's flags byte keyframe bit is authoritative,
	// unlike a BlockGroup's Block (see consumeBlockGroup).
	descs := buildFrameDescriptors(pb, hdr.HeaderBytes, c.currentClusterTimecode, track, c.md.Info.TimecodeScale, 0, false, pb.Keyframe)
	c.advance(hdr.HeaderBytes + int(hdr.Size))
	return c.pushFrames(descs, hdr)
}

// pushFrames rebases each descriptor's PayloadOffset (currently relative to
// the start of the just-consumed element) to an absolute window offset
// captured before advance() moved window.begin, then pushes it onto the
// ring.
func (c *Controller) pushFrames(descs []FrameDescriptor, hdr ElementHeader) error {
	// After advance(), window.begin sits at the first byte following the
	// element we just consumed; the element itself started hdr.HeaderBytes
	// + hdr.Size bytes before that.
	elementStart := c.window.begin - (hdr.HeaderBytes + int(hdr.Size))
	for _, fd := range descs {
		fd.PayloadOffset += elementStart
		if err := c.ring.push(fd); err != nil {
			return err
		}
	}
	return nil
}

// consumeBlockGroup scans a BlockGroup's children by hand (rather than via
// readTree) so the Block payload's offset within the window can be tracked
// directly as it is found, instead of recovered afterward by pointer
// arithmetic.
func (c *Controller) consumeBlockGroup(ctx context.Context, hdr ElementHeader) error {
	payload, err := c.readBoundedElement(ctx, hdr)
	if err != nil {
		return err
	}
	groupContentStart := c.window.begin + hdr.HeaderBytes

	var blockPayload []byte
	var blockAbsOffset int
	var durationTicks uint64
	var hasDuration bool
	var hasReference bool

	pos := 0
	for pos < len(payload) {
		childHdr, err := peekElementHeader(payload[pos:])
		if err != nil {
			break
		}
		childEnd := pos + childHdr.HeaderBytes + int(childHdr.Size)
		if childHdr.SizeUnknown || childEnd > len(payload) {
			break
		}
		childPayload := payload[pos+childHdr.HeaderBytes : childEnd]
		switch childHdr.ID {
		case idBlock:
			blockPayload = childPayload
			blockAbsOffset = groupContentStart + pos + childHdr.HeaderBytes
		case idBlockDuration:
			durationTicks = (EbmlNode{Data: childPayload}).AsUint()
			hasDuration = true
		case idReferenceBlock:
			hasReference = true
		}
		pos = childEnd
	}

	c.advance(hdr.HeaderBytes + int(hdr.Size))

	if blockPayload == nil {
		return nil
	}
	pb, err := parseBlockPayload(blockPayload)
	if err != nil {
		if IsRecoverable(err) {
			c.log.Warnf("mkvdemux: skipping block group: %v", err)
			return nil
		}
		return err
	}
	// A Block nested in a BlockGroup has no meaningful keyframe bit in its
	// own flags byte; keyframe status instead follows from whether this
	// frame references another one. No ReferenceBlock means nothing depends
	// on an earlier frame to decode it, i.e. a keyframe.
	track := c.trackByNumber[pb.TrackNumber]
	descs := buildFrameDescriptors(pb, blockAbsOffset, c.currentClusterTimecode, track, c.md.Info.TimecodeScale, durationTicks, hasDuration, !hasReference)
	for _, fd := range descs {
		if err := c.ring.push(fd); err != nil {
			return err
		}
	}
	return nil
}
