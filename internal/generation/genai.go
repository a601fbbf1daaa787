package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

var _ Model = (*GenAIModel)(nil)

type GenAIModel struct {
	client *genai.Client
	model  string
}

func NewGenAIModel(ctx context.Context, apiKey, model string) (*GenAIModel, error) {
	return NewGenAIModelWithConfig(ctx, model, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func NewGenAIModelWithConfig(ctx context.Context, model string, cfg *genai.ClientConfig) (*GenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAIModel{
		client: client,
		model:  model,
	}, nil
}

// Generate maps params onto the generation config. DoSample and
// SkipSpecialTokens have no Gemini equivalent.
func (m *GenAIModel) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	resp, err := m.client.Models.GenerateContent(
		ctx,
		m.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(params.MaxLength),
			Temperature:     genai.Ptr(params.Temperature),
			TopK:            genai.Ptr(float32(params.TopK)),
			TopP:            genai.Ptr(params.TopP),
		},
	)
	if err != nil {
		return "", fmt.Errorf("genai generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
