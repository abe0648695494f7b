package mkvdemux

import "github.com/pion/logging"

// Config holds the engine's tunables. Deliberately a plain struct, not a
// config-file format: this is an embedded parsing library, and its caller
// already owns whatever configuration surface it exposes.
type Config struct {
	// ReadChunkSize is the minimum number of bytes each Read against the
	// ByteSource asks for, even when the caller only needs a few more bytes
	// to complete the element it's looking at. Keeps a run of small header
	// peeks from turning into a run of small syscalls.
	ReadChunkSize int

	// InitialWindowCapacity seeds the readWindow's backing buffer.
	InitialWindowCapacity int

	// Logger receives diagnostics; nil defaults to a no-op logger.
	Logger logging.LeveledLogger
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		ReadChunkSize:         32 * 1024,
		InitialWindowCapacity: 64 * 1024,
	}
}

func (c Config) withDefaults() Config {
	if c.ReadChunkSize <= 0 {
		c.ReadChunkSize = 32 * 1024
	}
	if c.InitialWindowCapacity <= 0 {
		c.InitialWindowCapacity = 64 * 1024
	}
	c.Logger = scopedLogger(c.Logger)
	return c
}
