// Package extract turns free-text teacher notes into a validated CurriculumUnit through
// a structured-output LLM call.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/model"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

// ErrEmptyInput is returned before any model call when there is nothing to extract.
var ErrEmptyInput = errors.New("no text to extract from")

// Generator is a structured-output model call.
type Generator interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

// Factory builds a Generator authenticated with a caller-supplied API key.
type Factory func(apiKey string) (Generator, error)

type Extractor struct {
	log     *logger.Logger
	gen     Generator
	factory Factory
	limiter *Limiter
}

type Options struct {
	// Factory enables per-request API keys. Nil disables the override.
	Factory Factory
	// Limiter throttles model calls per client. Nil disables throttling.
	Limiter *Limiter
}

func New(log *logger.Logger, gen Generator, opts Options) *Extractor {
	return &Extractor{
		log:     log.With("service", "Extractor"),
		gen:     gen,
		factory: opts.Factory,
		limiter: opts.Limiter,
	}
}

var tracer = otel.Tracer("situacio/extract")

type callOptions struct {
	apiKey   string
	clientID string
}

type CallOption func(*callOptions)

// WithAPIKey routes the call through a generator built for key.
func WithAPIKey(key string) CallOption {
	return func(o *callOptions) { o.apiKey = strings.TrimSpace(key) }
}

// WithClient names the rate-limit bucket.
func WithClient(id string) CallOption {
	return func(o *callOptions) { o.clientID = id }
}

// Extract returns a validated unit or a *Failure.
func (e *Extractor) Extract(ctx context.Context, raw string, opts ...CallOption) (*model.CurriculumUnit, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}
	var co callOptions
	for _, o := range opts {
		o(&co)
	}

	ctx, span := tracer.Start(ctx, "extract.unit")
	defer span.End()
	span.SetAttributes(attribute.Int("extract.input_runes", len([]rune(raw))), attribute.Bool("extract.key_override", co.apiKey != ""))

	unit, err := e.extract(ctx, raw, co)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return unit, err
}

func (e *Extractor) extract(ctx context.Context, raw string, co callOptions) (*model.CurriculumUnit, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, co.clientID); err != nil {
			return nil, err
		}
	}

	gen := e.gen
	if co.apiKey != "" && e.factory != nil {
		g, err := e.factory(co.apiKey)
		if err != nil {
			return nil, &Failure{Kind: KeyMissing, Err: err}
		}
		gen = g
	}
	if gen == nil {
		return nil, &Failure{Kind: KeyMissing, Err: errors.New("no language model configured")}
	}

	start := time.Now()
	obj, err := gen.GenerateJSON(ctx, systemPrompt, BuildUserPrompt(raw), model.SchemaName, model.UnitSchema())
	if err != nil {
		f := Classify(err)
		e.log.Warn("extraction failed", "kind", f.Kind.String(), "elapsed", time.Since(start).String(), "error", err)
		return nil, f
	}
	unit, err := model.Decode(obj)
	if err != nil {
		e.log.Warn("extraction result rejected", "error", err)
		return nil, &Failure{Kind: Unknown, Err: fmt.Errorf("model returned an invalid unit: %w", err)}
	}
	if w := unit.Warnings(); len(w) > 0 {
		e.log.Info("extracted unit has gaps", "warnings", w)
	}
	e.log.Info("unit extracted", "elapsed", time.Since(start).String(), "competencies", len(unit.CurricularSpecification.SpecificCompetencies))
	return unit, nil
}
