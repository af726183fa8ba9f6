package geoloc

import (
	"context"
	"time"
)

// Position is one device location fix.
type Position struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Timestamp      time.Time
}

// Provider acquires the device's current position. Implementations
// must honor ctx cancellation and deadlines; callers bound every
// acquisition with a timeout so a missing fix fails fast instead of
// hanging.
type Provider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}
