package camera

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// DeviceProvider opens a local video device through OpenCV.
type DeviceProvider struct {
	DeviceID int
}

// Open implements Provider. It acquires the device, requests the low
// capture resolution and verifies the first frame decodes before
// handing the stream out.
func (p *DeviceProvider) Open(ctx context.Context) (Stream, error) {
	vc, err := gocv.OpenVideoCapture(p.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera device %d: %w", p.DeviceID, err)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, FrameWidth)
	vc.Set(gocv.VideoCaptureFrameHeight, FrameHeight)

	s := &deviceStream{vc: vc}
	if _, err := s.Grab(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("camera device %d produced no frame: %w", p.DeviceID, err)
	}
	return s, nil
}

type deviceStream struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	closed bool
}

// Grab implements Stream. Frames are flipped around the vertical axis
// so the captured still matches the mirrored preview.
func (s *deviceStream) Grab(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("camera stream is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := s.vc.Read(&mat); !ok || mat.Empty() {
		return nil, fmt.Errorf("failed to read frame from camera")
	}
	gocv.Flip(mat, &mat, 1)

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to decode camera frame: %w", err)
	}
	return img, nil
}

// Close implements Stream.
func (s *deviceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.vc.Close()
}
