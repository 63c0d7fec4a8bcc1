package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Resolution is encoded as [width, height].
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Width, r.Height})
}

func (r *Resolution) UnmarshalJSON(data []byte) error {
	var wh []int
	if err := json.Unmarshal(data, &wh); err != nil {
		return fmt.Errorf("resolution: %w", err)
	}
	if len(wh) != 2 {
		return fmt.Errorf("resolution: expected [width, height], got %d values", len(wh))
	}
	r.Width, r.Height = wh[0], wh[1]
	return nil
}

func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

type ScreenshotMetadata struct {
	Timestamp   time.Time  `json:"timestamp"`
	Path        string     `json:"path"`
	Resolution  Resolution `json:"resolution"`
	Description string     `json:"description,omitempty"`
}

// ScreenshotResult is created pending by the perception collaborator and
// filled in place by grounding. Each result is owned by exactly one grounding
// worker at a time.
type ScreenshotResult struct {
	ID               string             `json:"id"`
	Metadata         ScreenshotMetadata `json:"metadata"`
	Detected         DetectedElements   `json:"detected"`
	ValidationStatus ValidationStatus   `json:"validation_status"`
	AnalysisComplete bool               `json:"analysis_complete"`
}

func NewScreenshotResult(id string, metadata ScreenshotMetadata, rawOutput string) *ScreenshotResult {
	return &ScreenshotResult{
		ID:               id,
		Metadata:         metadata,
		Detected:         DetectedElements{RawOutput: rawOutput},
		ValidationStatus: StatusPending,
	}
}

func (s *ScreenshotResult) HasRawOutput() bool {
	return strings.TrimSpace(s.Detected.RawOutput) != ""
}
