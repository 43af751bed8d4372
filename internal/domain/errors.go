package domain

import (
	"errors"
	"fmt"
)

// ErrNoCredential means the remote inference path is not configured. It is an
// expected mode: callers fall back to the local composer without warning.
var ErrNoCredential = errors.New("no inference credential configured")

// ErrEmptyInput means a turn carried only whitespace. The turn is ignored.
var ErrEmptyInput = errors.New("input is empty")

// ErrTurnInFlight means a previous turn for the session has not resolved yet.
var ErrTurnInFlight = errors.New("a turn is already in flight for this session")

var ErrSessionNotFound = errors.New("session not found")

// ServiceError is a remote inference call that failed or timed out before a
// usable payload arrived. Status is zero for transport-level failures.
type ServiceError struct {
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("inference service error: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("inference service error: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ProtocolError is a remote inference call that completed but whose payload
// signalled an application-level failure (error object, no candidates).
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "inference protocol error: " + e.Reason
}

// RecognitionErrorKind classifies speech recognition failures.
type RecognitionErrorKind string

const (
	RecognitionPermissionDenied RecognitionErrorKind = "permission_denied"
	RecognitionNetwork          RecognitionErrorKind = "network"
	RecognitionNoSpeech         RecognitionErrorKind = "no_speech"
	RecognitionUnsupported      RecognitionErrorKind = "unsupported"
	RecognitionOther            RecognitionErrorKind = "other"
)

// RecognitionError is a classified speech input failure carrying a message
// suitable for direct display.
type RecognitionError struct {
	Kind   RecognitionErrorKind
	Detail string
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognition error (%s): %s", e.Kind, e.Detail)
}

// UserMessage returns the user-facing text for the error kind.
func (e *RecognitionError) UserMessage() string {
	switch e.Kind {
	case RecognitionPermissionDenied:
		return "Microphone access was denied. Please allow microphone access and try again."
	case RecognitionNetwork:
		return "Voice input lost its network connection. Please try again."
	case RecognitionNoSpeech:
		return "I didn't catch that. Please try speaking again."
	case RecognitionUnsupported:
		return "Voice input is not available here. You can keep typing instead."
	default:
		return "Voice input ran into a problem. Please try again."
	}
}
