package capture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/geoloc"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/utils"
)

func TestValidateLocation_BoundaryDistancePasses(t *testing.T) {
	rig := newTestRig(t, Config{LocationRequired: true})

	device := geoloc.Position{Latitude: testBranch.Latitude + 0.003, Longitude: testBranch.Longitude}
	rig.locator.pos = device
	distance := utils.HaversineDistanceMeters(device.Latitude, device.Longitude, testBranch.Latitude, testBranch.Longitude)

	branch := testBranch
	branch.GeofenceEnabled = true
	branch.AllowedRadiusMeters = distance

	// Distance exactly equal to the radius passes.
	loc, err := rig.engine.validateLocation(context.Background(), branch)
	require.NoError(t, err)
	assert.Equal(t, device.Latitude, loc.Latitude)
	assert.Equal(t, "Resolved Street, Makati", loc.Address)

	// One meter tighter rejects.
	branch.AllowedRadiusMeters = distance - 1
	_, err = rig.engine.validateLocation(context.Background(), branch)
	require.Error(t, err)
	assert.ErrorIs(t, err, timeclock.ErrOutsideAllowedRadius)

	var gferr *GeofenceError
	require.ErrorAs(t, err, &gferr)
	assert.InDelta(t, distance, gferr.DistanceMeters, 0.5)
	assert.Equal(t, testBranch.Address, gferr.BranchAddress)
}

func TestValidateLocation_GeofenceDisabledSkipsDistanceCheck(t *testing.T) {
	rig := newTestRig(t, Config{LocationRequired: true})

	// A position nowhere near the branch.
	rig.locator.pos = geoloc.Position{Latitude: 52.52, Longitude: 13.405}

	branch := testBranch
	branch.GeofenceEnabled = false
	branch.AllowedRadiusMeters = 1

	loc, err := rig.engine.validateLocation(context.Background(), branch)
	require.NoError(t, err)
	assert.Equal(t, 52.52, loc.Latitude)
	assert.Equal(t, "Resolved Street, Makati", loc.Address, "address still resolved for record-keeping")
}

func TestValidateLocation_ProviderFailure(t *testing.T) {
	rig := newTestRig(t, Config{LocationRequired: true})
	rig.locator.err = geoloc.ErrNoPosition

	_, err := rig.engine.validateLocation(context.Background(), testBranch)
	assert.ErrorIs(t, err, timeclock.ErrLocationUnavailable)
}
