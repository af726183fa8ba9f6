package capture

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/camera"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/facerec"
)

// checkLiveness samples the live feed twice, a short delay apart, and
// requires a face in both samples with landmark motion above the
// configured minimum. This is a heuristic anti-photo gate, not a
// security-grade liveness system: a printed photo held still fails,
// a video replay may not.
func (e *Engine) checkLiveness(ctx context.Context, stream camera.Stream) error {
	first, err := e.sampleFace(ctx, stream)
	if err != nil {
		return err
	}
	if first == nil {
		return fmt.Errorf("%w: no face in view", timeclock.ErrLivenessFailed)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.cfg.LivenessDelay):
	}

	second, err := e.sampleFace(ctx, stream)
	if err != nil {
		return err
	}
	if second == nil {
		return fmt.Errorf("%w: face left the view", timeclock.ErrLivenessFailed)
	}

	motion := displacement(first, second)
	if motion < e.cfg.LivenessMinMotion {
		return fmt.Errorf("%w: no motion detected (%.2f px)", timeclock.ErrLivenessFailed, motion)
	}
	return nil
}

func (e *Engine) sampleFace(ctx context.Context, stream camera.Stream) (*facerec.Face, error) {
	frame, err := stream.Grab(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", timeclock.ErrCameraUnavailable, err)
	}
	encoded, err := encodeJPEG(frame)
	if err != nil {
		return nil, err
	}
	face, err := e.rec.DetectSingle(encoded)
	if err != nil {
		return nil, fmt.Errorf("liveness detection failed: %w", err)
	}
	return face, nil
}

// displacement is the mean Euclidean distance between corresponding
// landmarks of the two samples. When landmarks are unavailable it
// falls back to bounding-box corner displacement.
func displacement(a, b *facerec.Face) float64 {
	n := len(a.Landmarks)
	if len(b.Landmarks) < n {
		n = len(b.Landmarks)
	}
	if n == 0 {
		minShift := pointDistance(a.Bounds.Min, b.Bounds.Min)
		maxShift := pointDistance(a.Bounds.Max, b.Bounds.Max)
		return (minShift + maxShift) / 2
	}

	var total float64
	for i := 0; i < n; i++ {
		total += pointDistance(a.Landmarks[i], b.Landmarks[i])
	}
	return total / float64(n)
}

func pointDistance(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
