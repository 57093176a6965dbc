package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/model"
)

// DeviceSource captures from a local ALSA input by running arecord and
// chunking its WAV output stream. Used by the CLI record path; remote
// clients use PushStream instead.
type DeviceSource struct {
	log       zerolog.Logger
	chunkSize int
}

// NewDeviceSource returns a source that emits roughly chunkMS milliseconds
// of audio per chunk.
func NewDeviceSource(log zerolog.Logger, chunkMS int) *DeviceSource {
	if chunkMS <= 0 {
		chunkMS = 500
	}
	return &DeviceSource{log: log, chunkSize: chunkMS}
}

// Open launches the recorder process. A missing binary or device maps to
// ErrDeviceUnavailable; an OS-level refusal maps to ErrPermissionDenied.
func (d *DeviceSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	bin, err := exec.LookPath("arecord")
	if err != nil {
		return nil, fmt.Errorf("%w: arecord not installed", model.ErrDeviceUnavailable)
	}

	device := c.DeviceID
	if device == "" {
		device = "default"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-q",
		"-D", device,
		"-f", "S16_LE",
		"-c", strconv.Itoa(c.Channels),
		"-r", strconv.Itoa(c.SampleRate),
		"-t", "wav",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDeviceUnavailable, err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if strings.Contains(err.Error(), "permission denied") {
			return nil, fmt.Errorf("%w: %v", model.ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrDeviceUnavailable, err)
	}

	// Bytes of audio per chunk interval, frame aligned.
	bps := c.SampleRate * c.Channels * 2
	size := bps * d.chunkSize / 1000
	frame := 2 * c.Channels
	size = (size / frame) * frame
	if size <= 0 {
		size = bps / 2
	}

	st := &deviceStream{
		cmd:    cmd,
		stdout: stdout,
		ch:     make(chan []byte, 16),
		log:    d.log,
	}
	go st.read(size)
	return st, nil
}

type deviceStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	ch     chan []byte
	log    zerolog.Logger

	once sync.Once
}

func (s *deviceStream) Chunks() <-chan []byte { return s.ch }

// read slices the process output into interval-sized chunks. The first
// chunk carries the streamed RIFF header; concatenation therefore yields a
// WAV object.
func (s *deviceStream) read(size int) {
	defer close(s.ch)
	for {
		buf := make([]byte, size)
		n, err := io.ReadFull(s.stdout, buf)
		if n > 0 {
			s.ch <- buf[:n]
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				s.log.Warn().Err(err).Msg("device stream read ended")
			}
			return
		}
	}
}

// Close stops the recorder process, which flushes and ends the stream.
func (s *deviceStream) Close() error {
	var err error
	s.once.Do(func() {
		if s.cmd.Process != nil {
			// Interrupt lets arecord shut down its capture handle cleanly.
			if sigErr := s.cmd.Process.Signal(os.Interrupt); sigErr != nil {
				err = s.cmd.Process.Kill()
			}
		}
		_ = s.cmd.Wait()
	})
	return err
}
