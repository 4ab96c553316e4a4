package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ContentGenerator is the part of genai.Models used by the analyzer.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGeminiClient builds a genai client for either the Gemini API or Vertex AI.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{
		HTTPClient: &http.Client{Timeout: timeoutOrDefault(cfg.Gemini.Timeout, 90*time.Second)},
	}

	switch cfg.Gemini.Backend {
	case config.GeminiBackendVertex:
		if cfg.Gemini.Project == "" {
			return nil, fmt.Errorf("gemini project is required for the vertex backend")
		}
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.Gemini.Project
		clientConfig.Location = cfg.Gemini.Location
	default:
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini api key is not configured")
		}
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = cfg.Gemini.APIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	generator      ContentGenerator
}

// NewGeminiAIRepository creates an AIRepository that forces the aggregate_company_news tool.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, generator ContentGenerator) AIRepository {
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Gemini.MaxRequestPerMinute),
		generator:      generator,
	}
}

func (r *geminiAIRepository) Model() string {
	return r.cfg.Gemini.Model
}

func (r *geminiAIRepository) Temperature() float32 {
	return r.cfg.Gemini.Temperature
}

// AnalyzeNews sends one user turn with the function declaration attached.
func (r *geminiAIRepository) AnalyzeNews(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	generateConfig := &genai.GenerateContentConfig{
		Temperature: utils.ToPointer(r.cfg.Gemini.Temperature),
		Tools: []*genai.Tool{
			{FunctionDeclarations: []*genai.FunctionDeclaration{AggregateCompanyNewsDeclaration()}},
		},
	}

	start := time.Now()
	resp, err := r.generator.GenerateContent(ctx, r.cfg.Gemini.Model, contents, generateConfig)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to generate content", logger.ErrorField(err), logger.StringField("model", r.cfg.Gemini.Model))
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	r.logger.DebugContext(ctx, "Gemini response received",
		logger.StringField("model", r.cfg.Gemini.Model),
		logger.DurationField("elapsed", time.Since(start)),
		logger.IntField("candidates", len(resp.Candidates)),
	)
	return resp, nil
}
