package facerec

import (
	"image"
	"math"
)

// DescriptorLength is the dimensionality of a face embedding.
const DescriptorLength = 128

// Descriptor is a fixed-length numeric embedding representing one
// face's identity for distance-based comparison.
type Descriptor [DescriptorLength]float32

// Distance returns the Euclidean distance between two descriptors.
// Pure function of its inputs; identical inputs always yield the same
// distance.
func (d Descriptor) Distance(other Descriptor) float64 {
	var sum float64
	for i := range d {
		diff := float64(d[i]) - float64(other[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Face is one detected face in an image.
type Face struct {
	// Bounds is the detected bounding box.
	Bounds image.Rectangle

	// Landmarks are the detected facial landmark points.
	Landmarks []image.Point

	// Descriptor is the identity embedding extracted from the face.
	Descriptor Descriptor
}

// Recognizer runs the detect -> landmark -> descriptor pipeline on an
// encoded image. Implementations are injected so the capture engine
// can run against any inference runtime (or a fake in tests).
type Recognizer interface {
	// Ready reports whether all model artifacts loaded successfully.
	// Callers must treat a not-ready recognizer as a hard precondition
	// failure rather than degrade.
	Ready() bool

	// DetectSingle finds the most prominent face in a JPEG-encoded
	// image and returns its landmarks and descriptor. Returns
	// (nil, nil) when no face is present.
	DetectSingle(imageJPEG []byte) (*Face, error)

	// Close releases model resources.
	Close() error
}
