package detection

import (
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/omr-eval/internal/config"
)

// Candidate is a detected region that passed the bubble size and shape filters.
type Candidate struct {
	// ID identifies the source region; stable for a given input.
	ID int `json:"id"`

	// Rect is the region's bounding box.
	Rect image.Rectangle `json:"rect"`

	// Area is the region's pixel area.
	Area int `json:"area"`
}

// Center returns the bounding-box midpoint.
func (c Candidate) Center() (x, y float64) {
	return float64(c.Rect.Min.X) + float64(c.Rect.Dx())/2,
		float64(c.Rect.Min.Y) + float64(c.Rect.Dy())/2
}

// Detection is the output of a Detector.
type Detection struct {
	// Candidates are sorted top-to-bottom, then left-to-right by their top-left corner.
	Candidates []Candidate

	// Mask is the binarized sheet: 255 for ink, 0 for background.
	Mask *image.Gray

	// Threshold is the gray level separating ink (<= Threshold) from background.
	Threshold uint8

	// Regions is the number of connected regions before filtering.
	Regions int
}

// Detector extracts bubble candidates from a normalized sheet image.
type Detector interface {
	Detect(img image.Image) (*Detection, error)
}

type factory func(cfg config.SheetConfig) Detector

var variants = map[string]factory{
	"native": func(cfg config.SheetConfig) Detector { return NewNativeDetector(cfg) },
}

// NewDetector creates a detector for the configured variant.
// An empty variant selects "native".
func NewDetector(cfg config.SheetConfig) (Detector, error) {
	name := cfg.Detector
	if name == "" {
		name = "native"
	}
	f, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("unknown detector variant: %s", name)
	}
	return f(cfg), nil
}

// Variants lists the detector variants compiled into this binary.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// accept reports whether a region with the given box and area is bubble-like.
func accept(cfg config.SheetConfig, r image.Rectangle, area float64) bool {
	if area < float64(cfg.BubbleMinArea) || area > float64(cfg.BubbleMaxArea) {
		return false
	}
	if r.Dy() == 0 {
		return false
	}
	aspect := float64(r.Dx()) / float64(r.Dy())
	return aspect >= cfg.AspectMin && aspect <= cfg.AspectMax
}

// sortCandidates orders candidates by top edge, then left edge, then ID.
func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i].Rect.Min, cands[j].Rect.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return cands[i].ID < cands[j].ID
	})
}
