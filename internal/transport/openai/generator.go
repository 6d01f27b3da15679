package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/elsinore-cloud/hamletqa/internal/domain"
	"github.com/elsinore-cloud/hamletqa/internal/metrics"
)

// systemPrompt grounds the model in the retrieved documents only.
const systemPrompt = "You are a chatbot that answers questions about Shakespeare's Hamlet. " +
	"Generate responses based on the content in the reference documents provided. " +
	"If the documents don't contain relevant information, say so politely. " +
	"Provide detailed, thoughtful responses based on the Shakespearean content."

// noResponsePlaceholder is returned when the provider reply lacks the
// expected result structure.
const noResponsePlaceholder = "No response generated"

// Generator produces a grounded answer from retrieved documents via an
// OpenAI-compatible chat completions API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	topP        float32
	maxTokens   int
	logger      *zap.Logger
}

// GeneratorConfig holds the text-generation settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	TopP        float32
	MaxTokens   int
	Logger      *zap.Logger
}

// NewGenerator creates a text-generation gateway.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// Generate answers the question grounded in docs. Callers must not pass an
// empty docs slice; the empty-retrieval short circuit belongs to the
// orchestrator, not here.
func (g *Generator) Generate(ctx context.Context, question string, docs []domain.RetrievedDocument) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(question, docs)},
		},
		Temperature: g.temperature,
		TopP:        g.topP,
		MaxTokens:   g.maxTokens,
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", classifyGenerationErr(err)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(g.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 {
		return noResponsePlaceholder, nil
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return noResponsePlaceholder, nil
	}
	return answer, nil
}

// buildUserPrompt concatenates the retrieved documents under numbered labels
// followed by the literal question.
func buildUserPrompt(question string, docs []domain.RetrievedDocument) string {
	var b strings.Builder
	b.WriteString("Reference Documents:\n")
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Document %d:\n%s", i+1, doc.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// classifyGenerationErr maps provider failures onto the generation sentinels:
// throttling, request rejection, and everything else.
func classifyGenerationErr(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: generation API error %d", domain.ErrRateLimited, status)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: generation API error %d", domain.ErrInvalidRequest, status)
	case 0:
		return fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	default:
		return fmt.Errorf("%w: generation API error %d", domain.ErrGenerationFailure, status)
	}
}
