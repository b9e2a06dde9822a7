package detection

import (
	"image"

	"github.com/ironsheep/omr-eval/internal/config"
)

// NativeDetector is the pure Go bubble detector.
type NativeDetector struct {
	cfg config.SheetConfig
}

// NewNativeDetector creates a detector using the area, aspect and blur settings of cfg.
func NewNativeDetector(cfg config.SheetConfig) *NativeDetector {
	return &NativeDetector{cfg: cfg}
}

// Detect binarizes img and returns the regions that look like bubbles.
//
// A region is kept when its area lies in [BubbleMinArea, BubbleMaxArea] and its
// bounding-box width/height lies in [AspectMin, AspectMax], both inclusive.
// Detect never fails; an image without bubbles yields no candidates.
func (d *NativeDetector) Detect(img image.Image) (*Detection, error) {
	mask, level := Binarize(img, d.cfg.BlurRadius)
	regions := FindRegions(mask)

	candidates := make([]Candidate, 0)
	for _, r := range regions {
		if !accept(d.cfg, r.Rect, float64(r.Area)) {
			continue
		}
		candidates = append(candidates, Candidate{ID: r.ID, Rect: r.Rect, Area: r.Area})
	}
	sortCandidates(candidates)

	return &Detection{
		Candidates: candidates,
		Mask:       mask,
		Threshold:  level,
		Regions:    len(regions),
	}, nil
}
