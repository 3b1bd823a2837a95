package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/skillsage/server/internal/agent/model"
	logx "github.com/skillsage/server/pkg/logger"
)

// GeminiConfig holds what is needed to build both pipeline chat models.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Intent  model.IntentModelConfig
	Answer  model.AnswerModelConfig
}

// Models holds the classifier and answer models.
type Models struct {
	Intent *Chat
	Answer *Chat
}

// NewGeminiModels creates the intent and answer chat models on one client.
func NewGeminiModels(ctx context.Context, cfg GeminiConfig) (*Models, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	// Classification is a short JSON reply; thinking would only add latency.
	intentTemp := cfg.Intent.Temperature
	intentMax := cfg.Intent.MaxTokens
	intentModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Intent.Model,
		Temperature: &intentTemp,
		MaxTokens:   &intentMax,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating intent model")
		return nil, fmt.Errorf("error creating intent model: %w", err)
	}

	answerTemp := cfg.Answer.Temperature
	answerMax := cfg.Answer.MaxTokens
	answerModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Answer.Model,
		Temperature: &answerTemp,
		MaxTokens:   &answerMax,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(1024)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating answer model")
		return nil, fmt.Errorf("error creating answer model: %w", err)
	}

	return &Models{
		Intent: New(intentModel, cfg.Intent.Model),
		Answer: New(answerModel, cfg.Answer.Model),
	}, nil
}
