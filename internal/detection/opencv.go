//go:build gocv

package detection

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"

	"github.com/ironsheep/omr-eval/internal/config"
)

func init() {
	variants["opencv"] = func(cfg config.SheetConfig) Detector { return NewOpenCVDetector(cfg) }
}

// OpenCVDetector detects bubbles with OpenCV external contours.
//
// It uses a fixed 5x5 gaussian kernel, Otsu inverse thresholding and polygon
// contour areas, so areas differ slightly from the native detector's pixel counts.
type OpenCVDetector struct {
	cfg config.SheetConfig
}

// NewOpenCVDetector creates an OpenCV-backed detector.
func NewOpenCVDetector(cfg config.SheetConfig) *OpenCVDetector {
	return &OpenCVDetector{cfg: cfg}
}

// Detect implements Detector.
func (d *OpenCVDetector) Detect(img image.Image) (*Detection, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	level := gocv.Threshold(blurred, &thresh, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	candidates := make([]Candidate, 0)
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		rect := gocv.BoundingRect(c)
		if !accept(d.cfg, rect, area) {
			continue
		}
		candidates = append(candidates, Candidate{ID: i, Rect: rect, Area: int(area)})
	}
	sortCandidates(candidates)

	maskImg, err := thresh.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to read threshold mask: %w", err)
	}
	mask, ok := maskImg.(*image.Gray)
	if !ok {
		mask = image.NewGray(maskImg.Bounds())
		draw.Draw(mask, mask.Bounds(), maskImg, maskImg.Bounds().Min, draw.Src)
	}

	return &Detection{
		Candidates: candidates,
		Mask:       mask,
		Threshold:  uint8(level),
		Regions:    contours.Size(),
	}, nil
}
