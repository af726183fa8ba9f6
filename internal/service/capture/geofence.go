package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/utils"
)

// unknownAddress is the placeholder used when reverse geocoding fails.
// Reverse geocoding is best-effort and never blocks a clock event.
const unknownAddress = "Unknown location"

// VerifiedLocation is the outcome of a successful location phase.
type VerifiedLocation struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// GeofenceError reports a device outside the allowed radius. It
// carries both the resolved current address and the assigned branch
// address so the employee can tell a wrong site from GPS drift.
type GeofenceError struct {
	CurrentAddress string
	BranchAddress  string
	DistanceMeters float64
	AllowedMeters  float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf(
		"you are outside the allowed radius: current location %q is %.0f m from assigned branch %q (allowed %.0f m)",
		e.CurrentAddress, e.DistanceMeters, e.BranchAddress, e.AllowedMeters,
	)
}

func (e *GeofenceError) Unwrap() error {
	return timeclock.ErrOutsideAllowedRadius
}

// validateLocation acquires the device position with a bounded
// timeout, resolves a display address, and checks the branch geofence
// when it is enabled. A disabled geofence skips only the distance
// check; the address is still resolved for record-keeping.
func (e *Engine) validateLocation(ctx context.Context, branch timeclock.BranchLocation) (*VerifiedLocation, error) {
	lctx, cancel := context.WithTimeout(ctx, e.cfg.LocationTimeout)
	defer cancel()

	pos, err := e.locator.CurrentPosition(lctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", timeclock.ErrLocationTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", timeclock.ErrLocationUnavailable, err)
	}

	address := unknownAddress
	if e.geocoder != nil {
		if resolved, gerr := e.geocoder.ReverseGeocode(ctx, pos.Latitude, pos.Longitude); gerr == nil && resolved != "" {
			address = resolved
		} else if gerr != nil {
			// Silent degradation: proceed with the placeholder.
			e.logger.Debug("reverse geocoding failed", "error", gerr)
		}
	}

	if branch.GeofenceEnabled {
		distance := utils.HaversineDistanceMeters(pos.Latitude, pos.Longitude, branch.Latitude, branch.Longitude)
		if distance > branch.AllowedRadiusMeters {
			return nil, &GeofenceError{
				CurrentAddress: address,
				BranchAddress:  branch.Address,
				DistanceMeters: distance,
				AllowedMeters:  branch.AllowedRadiusMeters,
			}
		}
	}

	return &VerifiedLocation{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Address:   address,
	}, nil
}
