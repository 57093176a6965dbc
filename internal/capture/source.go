// Package capture owns the live audio-capture lifecycle: a session state
// machine over an input stream, accumulating ordered chunks until the
// caller completes or cancels. Sessions are transient and never persisted;
// ownership of the finalized chunk sequence transfers to the caller.
package capture

import "context"

// Constraints describe the requested input stream.
type Constraints struct {
	DeviceID         string
	SampleRate       int
	Channels         int
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
}

// DefaultConstraints requests mono voice capture with echo cancellation,
// noise suppression and automatic gain.
func DefaultConstraints() Constraints {
	return Constraints{
		DeviceID:         "default",
		SampleRate:       44100,
		Channels:         1,
		EchoCancellation: true,
		NoiseSuppression: true,
		AutoGainControl:  true,
	}
}

// Stream is one live audio input. Chunks delivers encoded fragments in
// production order and is closed by Close. Close stops the underlying
// hardware tracks; it must be safe to call more than once.
type Stream interface {
	Chunks() <-chan []byte
	Close() error
}

// Flusher is implemented by streams that can force emission of
// buffered-but-not-yet-delivered data before closing.
type Flusher interface {
	Flush() error
}

// Source opens input streams. Open fails with model.ErrPermissionDenied
// when the user or OS refuses, and model.ErrDeviceUnavailable when no
// suitable input exists.
type Source interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, c Constraints) (Stream, error)

func (f SourceFunc) Open(ctx context.Context, c Constraints) (Stream, error) { return f(ctx, c) }
