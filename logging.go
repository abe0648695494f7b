package mkvdemux

import "github.com/pion/logging"

// loggerFactory is the package-level default, matching the
// pion/logging.NewDefaultLoggerFactory() convention the pack's WebRTC
// pipelines (Azunyan1111/go-webrtc-whep-client, petervdpas/goop2) use for an
// embedded component that may or may not be given a real logger.
var loggerFactory = logging.NewDefaultLoggerFactory()

// scopedLogger returns the logger a Controller should use when its Config
// does not supply one: a LeveledLogger scoped to "mkvdemux", so its
// diagnostics (warnings for blocks skipped after a recoverable error) are
// distinguishable from the host application's own logs without the engine
// ever writing to stdout/stderr directly.
func scopedLogger(l logging.LeveledLogger) logging.LeveledLogger {
	if l != nil {
		return l
	}
	return loggerFactory.NewLogger("mkvdemux")
}
