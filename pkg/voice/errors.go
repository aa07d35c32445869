package voice

import (
	"context"
	"errors"
	"fmt"
)

// CaptureError means no usable audio reached the transcriber.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("audio capture failed: %v", e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// PermissionError means the speech or chat backend refused the credentials.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("access denied: %v", e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// NoSpeechError is returned when the recording contained only silence.
type NoSpeechError struct{}

func (e *NoSpeechError) Error() string { return "no speech detected" }

type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError carries a non-success answer from an external service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: status %d: %s", e.Service, e.StatusCode, e.Body)
}

type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback failed: %v", e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// UserMessage turns any voice failure into the text shown as a system entry.
func UserMessage(err error) string {
	var (
		captureErr    *CaptureError
		permissionErr *PermissionError
		noSpeechErr   *NoSpeechError
		networkErr    *NetworkError
		upstreamErr   *UpstreamError
		playbackErr   *PlaybackError
	)

	switch {
	case errors.As(err, &captureErr):
		return "⚠️ Failed to access microphone. Check that a microphone is connected."
	case errors.As(err, &permissionErr):
		return "⚠️ Access was denied. Check microphone permissions and the voice service credentials."
	case errors.As(err, &noSpeechErr):
		return "⚠️ I didn't catch that. Please try speaking again."
	case errors.As(err, &upstreamErr):
		return fmt.Sprintf("⚠️ The %s service returned an error (%d). Please try again.", upstreamErr.Service, upstreamErr.StatusCode)
	case errors.As(err, &playbackErr):
		return "⚠️ Could not play the audio response."
	case errors.Is(err, context.DeadlineExceeded):
		return "⚠️ The voice service took too long to answer. Please try again."
	case errors.As(err, &networkErr):
		return "⚠️ Could not reach the voice service. Check your connection and try again."
	default:
		return "⚠️ Could not process voice conversation. Please try again."
	}
}
