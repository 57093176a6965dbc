// Package audio owns the canonical audio encoding boundary: assembling
// captured chunks into one blob, encoding raw PCM into the storage
// container, and validating anything that crosses into or out of the
// recording store. Exactly one encoding (16-bit PCM WAV) is ever persisted.
package audio

import (
	"fmt"
	"strings"

	"github.com/murmur-app/murmur/internal/model"
)

const (
	// CanonicalMIME is the declared type of every persisted recording.
	CanonicalMIME = "audio/wav"

	// Ext is the file extension used by the recording store.
	Ext = ".wav"

	bytesPerSample = 2 // LINEAR16
	bitDepth       = 16
	pcmFormat      = 1 // WAV PCM format tag
)

// permittedTypes are the accepted spellings of the one canonical encoding.
var permittedTypes = map[string]struct{}{
	"audio/wav":   {},
	"audio/x-wav": {},
	"audio/wave":  {},
}

// AllowedType reports whether the declared MIME type is in the permitted
// set. Parameters ("; codecs=…") and case are ignored.
func AllowedType(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	_, ok := permittedTypes[mime]
	return ok
}

// CheckType returns ErrInvalidFormat for MIME types outside the permitted set.
func CheckType(mime string) error {
	if !AllowedType(mime) {
		return fmt.Errorf("%w: unsupported type %q", model.ErrInvalidFormat, mime)
	}
	return nil
}
