package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/murmur-app/murmur/internal/model"
)

// Validate checks that data parses as a PCM WAV object. Streamed WAV with
// provisional RIFF sizes is accepted; anything that is not WAV/PCM fails
// with ErrInvalidFormat.
func Validate(data []byte) error {
	d := wav.NewDecoder(bytes.NewReader(data))
	d.ReadInfo()
	if !d.IsValidFile() {
		return fmt.Errorf("%w: not a WAV object", model.ErrInvalidFormat)
	}
	if d.WavAudioFormat != pcmFormat {
		return fmt.Errorf("%w: WAV format tag %d, want PCM", model.ErrInvalidFormat, d.WavAudioFormat)
	}
	return nil
}

// EncodePCM wraps raw little-endian LINEAR16 samples in the canonical WAV
// container. Used when a capture source delivers bare PCM (e.g. a remote
// client streaming microphone frames).
func EncodePCM(pcm []byte, sampleRate, channels int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, model.ErrNoAudioCaptured
	}
	if len(pcm)%bytesPerSample != 0 {
		// Trailing odd byte cannot form a sample; a torn final chunk would
		// otherwise corrupt the whole file.
		pcm = pcm[:len(pcm)-1]
	}

	samples := make([]int, len(pcm)/bytesPerSample)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample:])))
	}

	var buf writeSeekBuffer
	enc := wav.NewEncoder(&buf, sampleRate, bitDepth, channels, pcmFormat)
	ib := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(ib); err != nil {
		return nil, fmt.Errorf("encode pcm: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSeekBuffer is an in-memory io.WriteSeeker for the WAV encoder, which
// seeks back to patch RIFF sizes on Close.
type writeSeekBuffer struct {
	buf []byte
	pos int
}

func (w *writeSeekBuffer) Write(p []byte) (int, error) {
	if need := w.pos + len(p); need > len(w.buf) {
		grown := make([]byte, need)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
	return len(p), nil
}

func (w *writeSeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int
	switch whence {
	case io.SeekStart:
		next = int(offset)
	case io.SeekCurrent:
		next = w.pos + int(offset)
	case io.SeekEnd:
		next = len(w.buf) + int(offset)
	default:
		return 0, fmt.Errorf("unsupported whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative seek position %d", next)
	}
	w.pos = next
	return int64(next), nil
}

func (w *writeSeekBuffer) Bytes() []byte { return w.buf }
