package capture

import (
	"context"
	"io"
)

// Device is the camera/microphone collaborator. Exactly one Clip may be open
// at a time per device; the recording session enforces that.
type Device interface {
	// Supports reports whether the device can record the given container/codec
	// combination.
	Supports(mimeType string) bool
	// Start opens a capture session. A permission or hardware failure here is
	// fatal to starting the recording and is surfaced to the user.
	Start(ctx context.Context, opts Options) (Clip, error)
}

// Clip is one open capture session.
type Clip interface {
	// Stop finalizes the capture into a single artifact. Timeout and manual
	// stop both land here; there is no other way to end a clip.
	Stop(ctx context.Context) (Artifact, error)
}

// Artifact is the finalized recording. Data is consumed once, by the
// uploader; raw capture bytes are never persisted into the job collection.
type Artifact struct {
	Data     io.Reader
	MimeType string
	Size     int64
}

// Options bound the capture so artifacts stay small enough for upload and
// downstream transcription.
type Options struct {
	MimeType      string
	MaxBitrateBPS int
	Width         int
	Height        int
}

// DefaultOptions is the deliberate compression policy: 720p at a bounded
// bitrate keeps a 3-minute answer around 25 MB.
func DefaultOptions() Options {
	return Options{
		MaxBitrateBPS: 1_000_000,
		Width:         1280,
		Height:        720,
	}
}

// PreferredMimeTypes is the ordered container/codec fallback list. The first
// entries are the ones the transcription collaborator handles natively.
var PreferredMimeTypes = []string{
	"video/webm;codecs=vp9,opus",
	"video/webm;codecs=vp8,opus",
	"video/webm",
	"video/mp4",
}

// PickMimeType walks the preference list and returns the first format the
// device supports. ok is false when nothing matches.
func PickMimeType(d Device, preferred []string) (string, bool) {
	if len(preferred) == 0 {
		preferred = PreferredMimeTypes
	}
	for _, mt := range preferred {
		if d.Supports(mt) {
			return mt, true
		}
	}
	return "", false
}
