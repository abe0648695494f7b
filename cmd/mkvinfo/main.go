// Command mkvinfo inspects a Matroska/WebM file: it opens it through the
// streaming controller, prints the segment/track metadata the opening phase
// recovered, and optionally walks every frame to report per-track counts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pion/logging"
	"github.com/spf13/pflag"

	"github.com/mkvcore/mkvdemux"
)

func main() {
	var (
		countFrames = pflag.BoolP("frames", "f", false, "walk the whole file and report per-track frame counts")
		verbose     = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mkvinfo [-f] [-v] <file.mkv>")
		os.Exit(2)
	}

	if err := run(pflag.Arg(0), *countFrames, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "mkvinfo:", err)
		os.Exit(1)
	}
}

func run(path string, countFrames, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg := mkvdemux.DefaultConfig()
	if verbose {
		factory := logging.NewDefaultLoggerFactory()
		factory.DefaultLogLevel = logging.LogLevelDebug
		cfg.Logger = factory.NewLogger("mkvinfo")
	}

	ctx := context.Background()
	demux, err := mkvdemux.NewDemuxer(ctx, f, cfg)
	if err != nil {
		return err
	}
	defer demux.Close()

	info := demux.GetFileInfo()
	fmt.Printf("Title: %q\n", info.Title)
	fmt.Printf("MuxingApp: %q  WritingApp: %q\n", info.MuxingApp, info.WritingApp)
	fmt.Printf("TimecodeScale: %d ns\n", info.TimecodeScale)
	if info.HasDuration {
		fmt.Printf("Duration: %.3f ticks (%.3f s)\n", info.DurationTicks,
			info.DurationTicks*float64(info.TimecodeScale)/1e9)
	}

	fmt.Printf("Tracks: %d\n", demux.GetNumTracks())
	for i := 0; i < demux.GetNumTracks(); i++ {
		t, _ := demux.GetTrackInfo(i)
		fmt.Printf("  #%d uid=%d type=%d codec=%s", t.Number, t.UID, t.Type, t.CodecID)
		if t.Video != nil {
			fmt.Printf(" video=%dx%d", t.Video.PixelWidth, t.Video.PixelHeight)
		}
		if t.Audio != nil {
			fmt.Printf(" audio=%.0fHz/%dch", t.Audio.SamplingFrequency, t.Audio.Channels)
		}
		fmt.Println()
	}

	fmt.Printf("Cues: %d\n", len(demux.GetCues()))

	if !countFrames {
		return nil
	}

	counts := make(map[uint64]int)
	for {
		pkt, err := demux.ReadPacket(ctx)
		if err != nil {
			if errors.Is(err, mkvdemux.ErrEndOfStream) {
				break
			}
			return err
		}
		counts[pkt.TrackNumber]++
	}
	for track, n := range counts {
		fmt.Printf("  track %d: %d frames\n", track, n)
	}
	return nil
}
