package audio

import (
	"fmt"

	"github.com/murmur-app/murmur/internal/model"
)

// Blob is one complete audio object with its declared encoding.
type Blob struct {
	Data []byte
	MIME string
}

// Assemble concatenates captured chunks in arrival order. It is
// deterministic: the same chunks in the same order always produce a
// byte-identical result. No reordering or deduplication happens here;
// a capture session has exactly one producer.
func Assemble(chunks [][]byte) []byte {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// AssembleBlob concatenates WAV-framed chunks and validates the result
// against the permitted encoding. Chunks outside the canonical encoding are
// rejected here, never persisted.
func AssembleBlob(chunks [][]byte, mime string) (*Blob, error) {
	if err := CheckType(mime); err != nil {
		return nil, err
	}
	data := Assemble(chunks)
	if len(data) == 0 {
		return nil, model.ErrNoAudioCaptured
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("assembled blob: %w", err)
	}
	return &Blob{Data: data, MIME: CanonicalMIME}, nil
}
