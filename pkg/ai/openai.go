package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	captionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lumina",
		Subsystem: "ai",
		Name:      "caption_duration_seconds",
		Help:      "Duration of AI caption requests",
	}, []string{"model"})

	captionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumina",
		Subsystem: "ai",
		Name:      "caption_failures_total",
		Help:      "Number of AI caption failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI captioner.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAICaptioner implements Captioner against the OpenAI chat completion API.
type OpenAICaptioner struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAICaptioner builds a new captioner using the provided configuration.
func NewOpenAICaptioner(cfg OpenAIConfig) (*OpenAICaptioner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 128
	}

	tracer := otel.Tracer("github.com/noah-isme/lumina-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAICaptioner{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Suggest sends the caption request to OpenAI and parses the response.
func (c *OpenAICaptioner) Suggest(parent context.Context, input CaptionInput) (CaptionResult, error) {
	ctx, span := c.tracer.Start(parent, "openai.caption", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: captionSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildCaptionPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	captionDuration.WithLabelValues(c.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		captionFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CaptionResult{}, fmt.Errorf("openai caption: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		captionFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CaptionResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	caption, err := parseCaptionResponse(content)
	if err != nil {
		captionFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CaptionResult{}, err
	}

	return CaptionResult{Caption: caption, Model: c.cfg.Model}, nil
}

func captionSystemPrompt() string {
	return "You write short, descriptive captions for images in a photo library. Respond with a JSON object containing a sin" +
		"gle caption field of at most two sentences. Do not mention that you cannot see the image."
}

func buildCaptionPrompt(input CaptionInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Image\n")
	builder.WriteString(input.Title)
	if input.CategoryName != "" {
		builder.WriteString("\n\n## Category\n")
		builder.WriteString(input.CategoryName)
	}
	if len(input.Tags) > 0 {
		builder.WriteString("\n\n## Tags\n")
		builder.WriteString(strings.Join(input.Tags, ", "))
	}
	if input.MimeType != "" {
		builder.WriteString("\n\n## Format\n")
		builder.WriteString(input.MimeType)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseCaptionResponse(content string) (string, error) {
	type payload struct {
		Caption string `json:"caption"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", fmt.Errorf("parse caption json: %w", err)
	}

	caption := strings.TrimSpace(data.Caption)
	if caption == "" {
		return "", fmt.Errorf("empty caption returned")
	}

	return caption, nil
}
