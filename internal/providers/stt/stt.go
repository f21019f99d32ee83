package stt

import "context"

// Provider transcribes one recorded answer. The media bytes are whatever the
// capture layer produced (webm/opus by default); confidence is the
// recognizer's own estimate for the best alternative.
type Provider interface {
	Transcribe(ctx context.Context, media []byte, language string) (text string, confidence float64, err error)
	Close() error
}
