package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogsave/internal/telemetry/metrics"
	"github.com/2beens/blogsave/internal/telemetry/tracing"
)

var ErrEmptyResponse = errors.New("model returned empty response")

// Params is the decoding configuration handed to the model on every call.
type Params struct {
	MaxLength         int
	Temperature       float32
	DoSample          bool
	TopK              int
	TopP              float32
	SkipSpecialTokens bool
}

// DefaultParams are used for every blog generation request.
var DefaultParams = Params{
	MaxLength:         300,
	Temperature:       0.7,
	DoSample:          true,
	TopK:              50,
	TopP:              0.95,
	SkipSpecialTokens: true,
}

// Model is a text continuation capability: given a prompt and decoding
// params it returns the generated text.
type Model interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

type Adapter struct {
	model          Model
	params         Params
	metricsManager *metrics.Manager
}

func NewAdapter(model Model, metricsManager *metrics.Manager) *Adapter {
	return &Adapter{
		model:          model,
		params:         DefaultParams,
		metricsManager: metricsManager,
	}
}

// Generate does not validate the prompt, an empty one is passed to the model as is.
// An empty model result is reported as ErrEmptyResponse.
func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "generation.generate")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	start := time.Now()
	text, err := a.model.Generate(ctx, prompt, a.params)
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}
	a.observe(time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return "", fmt.Errorf("generate text: %w", err)
	}

	log.Debugf("generated %d chars in %s", len(text), time.Since(start))
	span.SetAttributes(attribute.Int("text.length", len(text)))

	return text, nil
}

func (a *Adapter) observe(took time.Duration, err error) {
	if a.metricsManager == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	a.metricsManager.CounterGenerations.WithLabelValues(status).Inc()
	a.metricsManager.HistGenerationDuration.Observe(took.Seconds())
}
