// Package generator asks a chat model for a course structure. It returns the
// model's raw text; callers normalize it before it touches a tree.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/logger"
)

const defaultModel = "gpt-4o-mini"

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("generator is not configured")

const systemPrompt = `You design course structures. Reply with JSON only, no prose.
Shape: {"sessions":[{"title":"","modules":[{"title":"","units":[{"title":"","topics":[{"title":"","scenes":[{"title":"","durationMinutes":10}]}]}]}]}]}`

// Brief describes the course to draft.
type Brief struct {
	Topic    string              `json:"topic" validate:"required,max=500"`
	Sessions int                 `json:"sessions" validate:"omitempty,min=1,max=20"`
	Notes    string              `json:"notes" validate:"max=4000"`
	Strategy curriculum.Strategy `json:"strategy"`
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewOpenAIClient returns ErrDisabled when cfg has no API key.
func NewOpenAIClient(cfg Config, log *logger.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}
	if log == nil {
		log = logger.Nop()
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
		log.Warn("OPENAI_MODEL not set, using default", "model", model)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		log:    log,
	}, nil
}

// Generate returns the model's reply for brief.
func (o *OpenAIClient) Generate(ctx context.Context, brief Brief) ([]byte, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: Prompt(brief)},
		},
		Temperature: 0.4,
	}
	o.log.Debug("requesting structure", "model", o.model, "topic", brief.Topic)

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}
	o.log.Debug("structure received", "finish_reason", resp.Choices[0].FinishReason)
	return []byte(resp.Choices[0].Message.Content), nil
}

// Prompt renders the user message for brief.
func Prompt(brief Brief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course topic: %s\n", strings.TrimSpace(brief.Topic))
	if brief.Sessions > 0 {
		fmt.Fprintf(&b, "Number of sessions: %d\n", brief.Sessions)
	}
	s := brief.Strategy
	if s.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", s.TargetAudience)
	}
	if s.GeneralObjective != "" {
		fmt.Fprintf(&b, "General objective: %s\n", s.GeneralObjective)
	}
	if s.Methodology != "" {
		fmt.Fprintf(&b, "Methodology: %s\n", s.Methodology)
	}
	if notes := strings.TrimSpace(brief.Notes); notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", notes)
	}
	return b.String()
}
