package capture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/murmur-app/murmur/internal/model"
)

// --- Fakes ---

type fakeStream struct {
	mu      sync.Mutex
	ch      chan []byte
	closed  bool
	flushed bool
	tail    [][]byte // emitted by Flush, like a recorder's final dataavailable
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan []byte, 64)}
}

func (f *fakeStream) emit(data []byte) { f.ch <- data }

func (f *fakeStream) Chunks() <-chan []byte { return f.ch }

func (f *fakeStream) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed = true
	for _, c := range f.tail {
		f.ch <- c
	}
	f.tail = nil
	return nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	return nil
}

func (f *fakeStream) setTail(tail [][]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tail = tail
}

func (f *fakeStream) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func sourceFor(st *fakeStream) Source {
	return SourceFunc(func(context.Context, Constraints) (Stream, error) { return st, nil })
}

func startedSession(t *testing.T, st *fakeStream) *Session {
	t.Helper()
	s := NewSession(sourceFor(st), zerolog.Nop())
	require.NoError(t, s.Start(context.Background(), DefaultConstraints()))
	require.Equal(t, StateRecording, s.State())
	return s
}

// waitAppended blocks until the consumer goroutine has drained n chunks.
func waitAppended(t *testing.T, s *Session, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		got := len(s.chunks)
		s.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("chunks never reached %d", n)
}

// --- Tests ---

func TestChunkOrderPreservedAcrossPauseResume(t *testing.T) {
	st := newFakeStream()
	s := startedSession(t, st)

	st.emit([]byte("one"))
	st.emit([]byte("two"))
	waitAppended(t, s, 2)

	require.NoError(t, s.Pause())
	st.emit([]byte("dropped-while-paused"))
	// Give the consumer a chance to (wrongly) append it.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Resume())

	st.emit([]byte("three"))
	waitAppended(t, s, 3)
	st.setTail([][]byte{[]byte("four")})

	chunks, err := s.Complete()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("one"), []byte("two"), []byte("three"), []byte("four")}, chunks)
	require.True(t, st.flushed, "complete must force out buffered data")
	require.True(t, st.isClosed(), "complete must stop the stream")
	require.Equal(t, StateFinalized, s.State())
}

func TestCompleteWithZeroChunks(t *testing.T) {
	st := newFakeStream()
	s := startedSession(t, st)

	_, err := s.Complete()
	require.ErrorIs(t, err, model.ErrNoAudioCaptured)
	require.True(t, st.isClosed(), "stream released even when nothing was captured")
	require.Equal(t, StateFinalized, s.State())
}

func TestTeardownReleasesStreamFromEveryState(t *testing.T) {
	cases := []struct {
		name    string
		arrange func(t *testing.T, s *Session, st *fakeStream)
	}{
		{"recording", func(t *testing.T, s *Session, st *fakeStream) {}},
		{"paused", func(t *testing.T, s *Session, st *fakeStream) {
			require.NoError(t, s.Pause())
		}},
		{"resumed", func(t *testing.T, s *Session, st *fakeStream) {
			require.NoError(t, s.Pause())
			require.NoError(t, s.Resume())
		}},
		{"finalized", func(t *testing.T, s *Session, st *fakeStream) {
			st.emit([]byte("x"))
			waitAppended(t, s, 1)
			_, err := s.Complete()
			require.NoError(t, err)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newFakeStream()
			s := startedSession(t, st)
			tc.arrange(t, s, st)
			_ = s.Cancel()
			require.True(t, st.isClosed(), "teardown from %s leaked the stream", tc.name)
			require.Equal(t, StateIdle, s.State())
		})
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	st := newFakeStream()
	s := startedSession(t, st)
	require.NoError(t, s.Cancel())
	require.NoError(t, s.Cancel())
	require.True(t, st.isClosed())
}

func TestCancelDiscardsChunks(t *testing.T) {
	st := newFakeStream()
	s := startedSession(t, st)
	st.emit([]byte("uncommitted"))
	waitAppended(t, s, 1)
	require.NoError(t, s.Cancel())

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Nil(t, s.chunks)
}

func TestInvalidStateTransitions(t *testing.T) {
	st := newFakeStream()
	s := NewSession(sourceFor(st), zerolog.Nop())

	require.ErrorIs(t, s.Pause(), model.ErrInvalidState)
	require.ErrorIs(t, s.Resume(), model.ErrInvalidState)
	_, err := s.Complete()
	require.ErrorIs(t, err, model.ErrInvalidState)

	require.NoError(t, s.Start(context.Background(), DefaultConstraints()))
	require.ErrorIs(t, s.Resume(), model.ErrInvalidState)
	require.ErrorIs(t, s.Start(context.Background(), DefaultConstraints()), model.ErrInvalidState)

	require.NoError(t, s.Pause())
	require.ErrorIs(t, s.Pause(), model.ErrInvalidState)
	require.NoError(t, s.Cancel())
}

func TestPermissionDeniedIsTerminal(t *testing.T) {
	src := SourceFunc(func(context.Context, Constraints) (Stream, error) {
		return nil, model.ErrPermissionDenied
	})
	s := NewSession(src, zerolog.Nop())
	err := s.Start(context.Background(), DefaultConstraints())
	require.ErrorIs(t, err, model.ErrPermissionDenied)
	require.Equal(t, StatePermissionDenied, s.State())

	// Terminal: no restart without a new session.
	require.ErrorIs(t, s.Start(context.Background(), DefaultConstraints()), model.ErrInvalidState)
}

func TestDeviceUnavailableReturnsToIdle(t *testing.T) {
	src := SourceFunc(func(context.Context, Constraints) (Stream, error) {
		return nil, model.ErrDeviceUnavailable
	})
	s := NewSession(src, zerolog.Nop())
	require.ErrorIs(t, s.Start(context.Background(), DefaultConstraints()), model.ErrDeviceUnavailable)
	require.Equal(t, StateIdle, s.State())
}

func TestPushStream(t *testing.T) {
	p := NewPushStream(4)
	require.NoError(t, p.Push([]byte("a")))
	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "close is idempotent")
	require.True(t, p.Closed())
	require.ErrorIs(t, p.Push([]byte("b")), model.ErrInvalidState)

	var got [][]byte
	for c := range p.Chunks() {
		got = append(got, c)
	}
	require.Equal(t, [][]byte{[]byte("a")}, got)
}

func TestPushStreamDropsWhenFull(t *testing.T) {
	p := NewPushStream(1)
	require.NoError(t, p.Push([]byte("a")))
	require.Error(t, p.Push([]byte("b")))
	require.NoError(t, p.Close())
}
