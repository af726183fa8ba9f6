package facerec

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	goface "github.com/Kagami/go-face"
)

// The three dlib model artifacts: bounding-box detector, landmark
// shape predictor, and the ResNet descriptor network. All three must
// be present and non-empty; there is no partial-model operating mode.
var modelFiles = []string{
	"mmod_human_face_detector.dat",
	"shape_predictor_5_face_landmarks.dat",
	"dlib_face_recognition_resnet_model_v1.dat",
}

// DlibRecognizer wraps the dlib-based go-face recognizer.
type DlibRecognizer struct {
	rec   *goface.Recognizer
	ready bool
}

// LoadDlib loads the three model artifacts from modelDir. It fails
// when any artifact is missing or empty, before handing the directory
// to dlib, so the error names the offending file.
func LoadDlib(modelDir string) (*DlibRecognizer, error) {
	for _, name := range modelFiles {
		info, err := os.Stat(filepath.Join(modelDir, name))
		if err != nil {
			return nil, fmt.Errorf("face model %s is missing: %w", name, err)
		}
		if info.Size() == 0 {
			return nil, fmt.Errorf("face model %s is empty", name)
		}
	}

	rec, err := goface.NewRecognizer(modelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize face recognizer: %w", err)
	}

	return &DlibRecognizer{rec: rec, ready: true}, nil
}

// Ready implements Recognizer.
func (d *DlibRecognizer) Ready() bool {
	return d != nil && d.ready
}

// DetectSingle implements Recognizer. When multiple faces are present
// the largest bounding box wins.
func (d *DlibRecognizer) DetectSingle(imageJPEG []byte) (*Face, error) {
	if !d.Ready() {
		return nil, fmt.Errorf("face recognizer is not loaded")
	}

	faces, err := d.rec.Recognize(imageJPEG)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if len(faces) == 0 {
		return nil, nil
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if area(f.Rectangle) > area(best.Rectangle) {
			best = f
		}
	}

	return &Face{
		Bounds:     best.Rectangle,
		Landmarks:  best.Shapes,
		Descriptor: Descriptor(best.Descriptor),
	}, nil
}

// Close implements Recognizer.
func (d *DlibRecognizer) Close() error {
	if d.rec != nil {
		d.rec.Close()
	}
	d.ready = false
	return nil
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
