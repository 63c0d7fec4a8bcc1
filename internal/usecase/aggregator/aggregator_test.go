package aggregator

import (
	"math/rand"
	"testing"

	"screen-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func element(t entity.UIElementType, confidence float64) entity.DetectedElement {
	return entity.DetectedElement{
		Element:         entity.NewUIElement(t, string(t)),
		Confidence:      confidence,
		PossibleActions: []entity.ActionType{entity.MouseLeftClick},
	}
}

func TestAggregate(t *testing.T) {
	s := entity.NewScreenshotResult("id", entity.ScreenshotMetadata{Path: "a.png"}, "raw text")
	elems := []entity.DetectedElement{
		element(entity.ElementButton, 0.4),
		element(entity.ElementSearchBar, 0.92),
		element(entity.ElementIcon, 0.7),
	}

	Aggregate(s, elems)

	assert.Equal(t, 3, s.Detected.TotalCount)
	assert.Equal(t, 0.92, s.Detected.HighestConfidence)
	assert.Equal(t, "raw text", s.Detected.RawOutput)

	// The stored slice is a copy.
	elems[0].Confidence = 0.99
	assert.Equal(t, 0.4, s.Detected.Elements[0].Confidence)
}

func TestAggregate_Empty(t *testing.T) {
	s := entity.NewScreenshotResult("id", entity.ScreenshotMetadata{}, "")
	s.Detected.TotalCount = 5
	s.Detected.HighestConfidence = 0.8

	Aggregate(s, nil)

	assert.Empty(t, s.Detected.Elements)
	assert.Zero(t, s.Detected.TotalCount)
	assert.Zero(t, s.Detected.HighestConfidence)
}

func TestAggregate_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := entity.ElementTypes()

	for run := 0; run < 50; run++ {
		n := rng.Intn(8)
		elems := make([]entity.DetectedElement, n)
		want := 0.0
		for i := range elems {
			c := rng.Float64()
			elems[i] = element(types[rng.Intn(len(types))], c)
			if c > want {
				want = c
			}
		}

		s := entity.NewScreenshotResult("id", entity.ScreenshotMetadata{}, "raw")
		Aggregate(s, elems)
		first := s.Detected

		Aggregate(s, elems)
		assert.Equal(t, first, s.Detected)
		assert.Equal(t, n, s.Detected.TotalCount)
		assert.Equal(t, want, s.Detected.HighestConfidence)
	}
}
