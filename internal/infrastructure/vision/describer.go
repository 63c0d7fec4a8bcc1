package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"screen-agent/internal/application/port/output"
	"screen-agent/internal/domain/entity"
	"screen-agent/internal/infrastructure/prompts"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var _ output.PerceptionPort = (*Describer)(nil)

type Options struct {
	Model       string
	MaxWidth    int
	JPEGQuality int
	Temperature float32
	MaxTokens   int
}

func DefaultOptions() Options {
	return Options{
		MaxWidth:    1024,
		JPEGQuality: 75,
		Temperature: 0.1,
		MaxTokens:   2048,
	}
}

// Describer asks a vision model for a free-text description of a
// screenshot. It never produces elements; grounding does that.
type Describer struct {
	llm    output.LLMPort
	logger output.LoggerPort
	opts   Options
}

func New(llm output.LLMPort, logger output.LoggerPort, opts Options) *Describer {
	return &Describer{llm: llm, logger: logger, opts: opts}
}

func (d *Describer) Describe(ctx context.Context, path string) (*entity.ScreenshotResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat screenshot: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open screenshot %s: %w", path, err)
	}

	bounds := img.Bounds()
	resolution := entity.Resolution{Width: bounds.Dx(), Height: bounds.Dy()}
	if !resolution.Valid() {
		return nil, fmt.Errorf("screenshot %s has empty resolution %s", path, resolution)
	}

	if d.opts.MaxWidth > 0 && resolution.Width > d.opts.MaxWidth {
		img = imaging.Resize(img, d.opts.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(d.opts.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode screenshot %s: %w", path, err)
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	d.logger.Debug("Describing screenshot",
		"path", path,
		"resolution", resolution.String(),
		"jpegBytes", buf.Len())

	resp, err := d.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleUser, Content: prompts.VisionPrompt, Images: []string{dataURL}},
		},
		Temperature: d.opts.Temperature,
		MaxTokens:   d.opts.MaxTokens,
		Model:       d.opts.Model,
	})
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(resp.Message.Content)
	if raw == "" {
		d.logger.Warn("Vision model returned no description", "path", path)
	}

	metadata := entity.ScreenshotMetadata{
		Timestamp:  info.ModTime().UTC(),
		Path:       path,
		Resolution: resolution,
	}
	return entity.NewScreenshotResult(uuid.NewString(), metadata, raw), nil
}
