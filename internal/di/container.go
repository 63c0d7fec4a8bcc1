package di

import (
	"fmt"

	"screen-agent/internal/application/port/input"
	"screen-agent/internal/application/port/output"
	"screen-agent/internal/infrastructure/config"
	"screen-agent/internal/infrastructure/llm/openrouter"
	"screen-agent/internal/infrastructure/logger"
	"screen-agent/internal/infrastructure/vision"
	"screen-agent/internal/usecase/grounding"
	"screen-agent/internal/usecase/planner"
)

type Container struct {
	Config     *config.Config
	LLM        output.LLMPort
	Logger     output.LoggerPort
	Planner    input.PlanBuilder
	Grounder   input.Grounder
	Perception output.PerceptionPort
}

func NewContainer(cfg *config.Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c, err := newContainer(cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithLLM wires the use cases around an existing model
// collaborator. Tests and offline tooling use it to skip the provider.
func NewContainerWithLLM(cfg *config.Config, llm output.LLMPort, log output.LoggerPort) (*Container, error) {
	return build(cfg, llm, log)
}

func newContainer(cfg *config.Config, log output.LoggerPort) (*Container, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	llmCfg := openrouter.DefaultConfig(cfg.LLM.APIKey, cfg.LLM.Model)
	if cfg.LLM.BaseURL != "" {
		llmCfg.BaseURL = cfg.LLM.BaseURL
	}
	llmCfg.RequestsPerMinute = cfg.LLM.RequestsPerMinute
	if cfg.LLM.Timeout > 0 {
		llmCfg.Timeout = cfg.LLM.Timeout
	}
	llmCfg.Logger = log
	llm := openrouter.NewOpenRouterAdapter(llmCfg)

	return build(cfg, llm, log)
}

func build(cfg *config.Config, llm output.LLMPort, log output.LoggerPort) (*Container, error) {
	planOpts := planner.DefaultOptions()
	planOpts.Temperature = cfg.LLM.Temperature
	planOpts.MaxTokens = cfg.LLM.MaxTokens
	plans, err := planner.New(llm, log.WithField("component", "planner"), planOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create planner: %w", err)
	}

	groundOpts := grounding.DefaultOptions()
	groundOpts.Temperature = cfg.LLM.Temperature
	groundOpts.Concurrency = cfg.Grounding.Concurrency
	groundOpts.MaxTokens = cfg.Grounding.MaxTokens

	visionOpts := vision.DefaultOptions()
	visionOpts.Model = cfg.LLM.VisionModel
	visionOpts.MaxWidth = cfg.Vision.MaxWidth
	visionOpts.JPEGQuality = cfg.Vision.JPEGQuality

	return &Container{
		Config:     cfg,
		LLM:        llm,
		Logger:     log,
		Planner:    plans,
		Grounder:   grounding.New(llm, log.WithField("component", "grounding"), groundOpts),
		Perception: vision.New(llm, log.WithField("component", "vision"), visionOpts),
	}, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
