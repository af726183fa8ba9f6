package geoloc

import (
	"context"
	"errors"
	"time"
)

// ErrNoPosition is returned when the provider has no coordinates
// configured, which maps to a denied/unsupported geolocation source.
var ErrNoPosition = errors.New("no device position configured")

// StaticProvider reports a fixed position. Wall-mounted kiosks do not
// move, so their coordinates come from deployment configuration rather
// than a GPS fix.
type StaticProvider struct {
	Latitude   float64
	Longitude  float64
	Configured bool
}

// CurrentPosition implements Provider.
func (p *StaticProvider) CurrentPosition(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if !p.Configured {
		return Position{}, ErrNoPosition
	}
	return Position{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Timestamp: time.Now(),
	}, nil
}
