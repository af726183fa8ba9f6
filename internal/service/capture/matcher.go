package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/facerec"
)

// jpegQuality balances upload size against descriptor accuracy for
// the 320x240 capture stills.
const jpegQuality = 80

// matchStill verifies the captured still against the session reference
// descriptor. A still with no detectable face fails before any
// distance is computed; otherwise the decision is a pure function of
// distance versus the configured threshold (accept strictly below).
func (e *Engine) matchStill(still []byte, reference facerec.Descriptor) (float64, error) {
	face, err := e.rec.DetectSingle(still)
	if err != nil {
		return 0, fmt.Errorf("face verification failed: %w", err)
	}
	if face == nil {
		return 0, timeclock.ErrNoFaceInCapture
	}

	distance := face.Descriptor.Distance(reference)
	if distance >= e.cfg.MatchThreshold {
		return distance, fmt.Errorf("%w (distance %.2f, threshold %.2f)",
			timeclock.ErrFaceMismatch, distance, e.cfg.MatchThreshold)
	}
	return distance, nil
}

// encodeJPEG compresses a captured frame for matching and upload.
func encodeJPEG(frame image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode capture frame: %w", err)
	}
	return buf.Bytes(), nil
}
