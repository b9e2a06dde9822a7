package omr

import (
	"image"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/omr-eval/internal/imaging"
)

// Answer-set selectors.
const (
	// AutoSet asks for the set label to be read from the sheet header.
	AutoSet = "auto"
	// DefaultSet is used when the header cannot be read.
	DefaultSet = "A"
)

// SetReader recognizes the answer-set letter printed on a normalized sheet.
type SetReader interface {
	ReadSetLabel(img image.Image) (string, error)
}

// ResolveSet returns the set to score img with. Any selector other than
// AutoSet is returned upper-cased. For AutoSet the header of the normalized
// sheet is read with reader; DefaultSet is returned when reader is nil or
// fails.
func (e *Evaluator) ResolveSet(img image.Image, set string, reader SetReader) string {
	set = strings.TrimSpace(set)
	if !strings.EqualFold(set, AutoSet) {
		return strings.ToUpper(set)
	}
	if reader == nil || img == nil || img.Bounds().Empty() {
		e.logger.Warn("set label reader unavailable, using default set", zap.String("set", DefaultSet))
		return DefaultSet
	}

	label, err := reader.ReadSetLabel(imaging.Normalize(img, e.cfg.Sheet.TargetWidth))
	if err != nil {
		e.logger.Warn("set label not recognized, using default set",
			zap.String("set", DefaultSet),
			zap.Error(err),
		)
		return DefaultSet
	}
	e.logger.Debug("set label recognized", zap.String("set", label))
	return label
}
