package model

import "errors"

var (
	// ErrNotFound reports a store or index miss. Callers treat it as a
	// normal, handleable outcome, distinct from ErrInvalidFormat.
	ErrNotFound = errors.New("not found")

	// ErrValidation reports malformed caller input.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState reports an operation invoked in a capture state that
	// does not permit it. Treated as a caller bug, never a crash.
	ErrInvalidState = errors.New("invalid state")

	// ErrNoAudioCaptured reports completion of a capture session that
	// accumulated zero chunks. The caller must not persist the result.
	ErrNoAudioCaptured = errors.New("no audio captured")

	// ErrInvalidFormat reports bytes or a declared MIME type outside the
	// permitted encoding set, at write or read time.
	ErrInvalidFormat = errors.New("invalid audio format")

	// ErrPermissionDenied reports that the user or OS refused the audio
	// input device.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable reports that no suitable audio input exists.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
)
