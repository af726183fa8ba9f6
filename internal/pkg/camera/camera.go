package camera

import (
	"context"
	"image"
)

// Frame capture resolution. Low resolution keeps inference and upload
// cheap; the enrollment comparisons do not benefit from more pixels.
const (
	FrameWidth  = 320
	FrameHeight = 240
)

// Stream is an open, exclusively-owned camera session. Frames are
// returned mirrored horizontally, matching what the employee sees on
// the kiosk preview. Close must always be called; it releases the
// underlying hardware device.
type Stream interface {
	// Grab decodes and returns the next frame.
	Grab(ctx context.Context) (image.Image, error)

	// Close stops the stream and releases all hardware tracks. Safe to
	// call more than once.
	Close() error
}

// Provider opens camera sessions. Injected so the capture pipeline is
// testable without real hardware.
type Provider interface {
	Open(ctx context.Context) (Stream, error)
}
