package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/model"
)

// State is the capture session lifecycle position.
type State string

const (
	StateIdle                 State = "idle"
	StateRequestingPermission State = "requesting-permission"
	StateRecording            State = "recording"
	StatePaused               State = "paused"
	StateStopping             State = "stopping"
	StateFinalized            State = "finalized"
	StatePermissionDenied     State = "permission-denied"
)

// terminal states cannot be left except through Cancel's release path.
func (s State) terminal() bool {
	return s == StateFinalized || s == StatePermissionDenied
}

// Session is the state machine governing a single live recording
// interaction:
//
//	idle → requesting-permission → recording ⇄ paused → stopping → finalized
//	                      └→ permission-denied (terminal)
//
// The session exclusively owns the live stream and the uncommitted chunks.
// Whatever state it is in, releasing it (Complete or Cancel) always stops
// the stream's hardware tracks; a held-open microphone is a correctness
// bug, not a cosmetic one.
type Session struct {
	id     string
	source Source
	log    zerolog.Logger

	mu        sync.Mutex
	state     State
	stream    Stream
	chunks    [][]byte
	startedAt time.Time
	recorded  time.Duration
	segStart  time.Time
	done      chan struct{}
}

// NewSession creates an idle session over the given source.
func NewSession(source Source, log zerolog.Logger) *Session {
	return &Session{
		id:     uuid.New().String(),
		source: source,
		log:    log,
		state:  StateIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start requests an input stream under the given constraints and begins
// chunk accumulation. Permission refusal parks the session in the terminal
// permission-denied state; a missing device returns the session to idle so
// the caller can retry.
func (s *Session) Start(ctx context.Context, c Constraints) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("%w: start from %s", model.ErrInvalidState, s.state)
	}
	s.state = StateRequestingPermission
	s.mu.Unlock()

	// Suspension point: the permission prompt can take arbitrarily long.
	stream, err := s.source.Open(ctx, c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRequestingPermission {
		// Cancelled while the prompt was pending; never hold the stream.
		if stream != nil {
			_ = stream.Close()
		}
		return fmt.Errorf("%w: session cancelled during start", model.ErrInvalidState)
	}
	if err != nil {
		if errors.Is(err, model.ErrPermissionDenied) {
			s.state = StatePermissionDenied
			s.log.Warn().Str("session", s.id).Msg("microphone permission denied")
			return err
		}
		s.state = StateIdle
		s.log.Warn().Err(err).Str("session", s.id).Msg("capture source open failed")
		return err
	}

	s.stream = stream
	s.chunks = nil
	s.state = StateRecording
	s.startedAt = time.Now()
	s.segStart = s.startedAt
	s.done = make(chan struct{})
	go s.consume(stream)

	s.log.Info().Str("session", s.id).Str("device", c.DeviceID).Msg("recording started")
	return nil
}

// consume appends stream chunks in arrival order. Chunks delivered while
// paused are dropped, matching recorder pause semantics. Exits when the
// stream's channel is closed.
func (s *Session) consume(stream Stream) {
	defer close(s.done)
	for chunk := range stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		s.mu.Lock()
		if s.state == StateRecording || s.state == StateStopping {
			buf := make([]byte, len(chunk))
			copy(buf, chunk)
			s.chunks = append(s.chunks, buf)
		}
		s.mu.Unlock()
	}
}

// Pause halts chunk accumulation. The underlying stream stays open.
// Valid only while recording.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		s.log.Warn().Str("session", s.id).Str("state", string(s.state)).Msg("pause ignored")
		return fmt.Errorf("%w: pause from %s", model.ErrInvalidState, s.state)
	}
	s.state = StatePaused
	s.recorded += time.Since(s.segStart)
	return nil
}

// Resume restarts chunk accumulation. Valid only while paused.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		s.log.Warn().Str("session", s.id).Str("state", string(s.state)).Msg("resume ignored")
		return fmt.Errorf("%w: resume from %s", model.ErrInvalidState, s.state)
	}
	s.state = StateRecording
	s.segStart = time.Now()
	return nil
}

// Complete forces out any buffered data, releases the stream, and yields
// the complete ordered chunk sequence. Valid from recording or paused.
// Fails with ErrNoAudioCaptured when nothing was accumulated; the stream
// is released either way and the caller must not persist an empty take.
func (s *Session) Complete() ([][]byte, error) {
	s.mu.Lock()
	if s.state != StateRecording && s.state != StatePaused {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: complete from %s", model.ErrInvalidState, s.state)
	}
	if s.state == StateRecording {
		s.recorded += time.Since(s.segStart)
	}
	s.state = StateStopping
	stream := s.stream
	done := s.done
	s.mu.Unlock()

	if f, ok := stream.(Flusher); ok {
		if err := f.Flush(); err != nil {
			s.log.Warn().Err(err).Str("session", s.id).Msg("flush before stop failed")
		}
	}
	if err := stream.Close(); err != nil {
		s.log.Warn().Err(err).Str("session", s.id).Msg("stream close reported error")
	}
	<-done // drain the flushed tail

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFinalized
	s.stream = nil
	chunks := s.chunks
	s.chunks = nil
	if len(chunks) == 0 {
		s.log.Warn().Str("session", s.id).Msg("completed with zero chunks")
		return nil, model.ErrNoAudioCaptured
	}
	s.log.Info().Str("session", s.id).Int("chunks", len(chunks)).
		Dur("recorded", s.recorded).Msg("recording finalized")
	return chunks, nil
}

// Cancel releases the stream and discards uncommitted chunks from any
// state, returning the session to idle. It is the shared teardown path:
// component unmount must invoke it, and it always stops the stream's
// hardware tracks, even when called repeatedly or from terminal states.
func (s *Session) Cancel() error {
	s.mu.Lock()
	stream := s.stream
	done := s.done
	s.stream = nil
	s.chunks = nil
	s.state = StateIdle
	s.mu.Unlock()

	if stream == nil {
		return nil
	}
	err := stream.Close()
	if done != nil {
		<-done
	}
	if err != nil {
		s.log.Warn().Err(err).Str("session", s.id).Msg("stream close reported error")
		return err
	}
	s.log.Info().Str("session", s.id).Msg("capture cancelled")
	return nil
}

// Recorded returns the accumulated recording duration, excluding paused
// segments.
func (s *Session) Recorded() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRecording {
		return s.recorded + time.Since(s.segStart)
	}
	return s.recorded
}
