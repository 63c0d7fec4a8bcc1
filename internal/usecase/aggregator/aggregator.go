package aggregator

import "screen-agent/internal/domain/entity"

// Aggregate replaces the screenshot's elements with elems and re-derives
// TotalCount and HighestConfidence. RawOutput is kept. Calling it again with
// the same elements yields the same result.
func Aggregate(s *entity.ScreenshotResult, elems []entity.DetectedElement) {
	s.Detected.Elements = append([]entity.DetectedElement(nil), elems...)
	s.Detected.Recompute()
}
