package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ Model = (*TGIModel)(nil)

// TGIModel talks to a Hugging Face text-generation-inference server.
type TGIModel struct {
	baseURL    string
	modelID    string
	token      string
	httpClient *http.Client
}

type tgiParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float32 `json:"temperature"`
	DoSample       bool    `json:"do_sample"`
	TopK           int     `json:"top_k"`
	TopP           float32 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

type tgiRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters tgiParameters `json:"parameters"`
}

type tgiResponse struct {
	GeneratedText string `json:"generated_text"`
}

func NewTGIModel(baseURL, modelID, token string, timeout time.Duration) *TGIModel {
	return &TGIModel{
		baseURL: strings.TrimRight(baseURL, "/"),
		modelID: modelID,
		token:   token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (m *TGIModel) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("model.id", m.modelID))

	reqBody, err := json.Marshal(tgiRequest{
		Inputs: prompt,
		Parameters: tgiParameters{
			MaxNewTokens:   params.MaxLength,
			Temperature:    params.Temperature,
			DoSample:       params.DoSample,
			TopK:           params.TopK,
			TopP:           params.TopP,
			ReturnFullText: true, // whole sequence, prompt included
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal tgi request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create tgi request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tgi [%s] request: %w", m.modelID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read tgi response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("tgi [%s] status %d: %s", m.modelID, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return parseTGIResponse(respBody)
}

// parseTGIResponse accepts both the TGI object and the Inference API array shapes.
func parseTGIResponse(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", ErrEmptyResponse
	}

	if body[0] == '[' {
		var results []tgiResponse
		if err := json.Unmarshal(body, &results); err != nil {
			return "", fmt.Errorf("unmarshal tgi response: %w", err)
		}
		if len(results) == 0 || results[0].GeneratedText == "" {
			return "", ErrEmptyResponse
		}
		return results[0].GeneratedText, nil
	}

	var result tgiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal tgi response: %w", err)
	}
	if result.GeneratedText == "" {
		return "", ErrEmptyResponse
	}

	return result.GeneratedText, nil
}
