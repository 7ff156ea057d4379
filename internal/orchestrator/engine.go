// Package orchestrator computes shipping options for a request by fanning
// out to the fulfillment handlers a site supports.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/tournevent/shipping/pkg/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Request outcomes, recorded in logs and metrics.
const (
	OutcomeCompleted            = "completed"
	OutcomeSiteNotFound         = "site_not_found"
	OutcomeUnsupportedEmbedType = "unsupported_embed_type"
	OutcomeHandlerFailure       = "handler_failure"
	OutcomeError                = "error"
)

// SiteResolver resolves a site by name.
type SiteResolver interface {
	GetSiteID(ctx context.Context, name string) (*fulfillment.SiteID, error)
}

// OptionsResolver resolves the fulfillment options a site supports.
type OptionsResolver interface {
	GetFulfillmentOptions(ctx context.Context, site *fulfillment.SiteID, candidateTypes []string) (map[string]fulfillment.FulfillmentOption, error)
}

// Recorder receives request and handler measurements.
type Recorder interface {
	RecordRequest(outcome string, duration time.Duration)
	RecordHandler(fulfillmentType string, err error, duration time.Duration)
}

// Engine is the shipping options orchestration engine.
type Engine struct {
	sites    SiteResolver
	options  OptionsResolver
	registry *fulfillment.Registry
	logger   *otelzap.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracer sets the tracer used for request and handler spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithRecorder sets the measurement recorder.
func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) { e.recorder = recorder }
}

// New creates an engine.
func New(sites SiteResolver, options OptionsResolver, registry *fulfillment.Registry, logger *otelzap.Logger, opts ...Option) *Engine {
	e := &Engine{
		sites:    sites,
		options:  options,
		registry: registry,
		logger:   logger,
		tracer:   otel.Tracer("github.com/tournevent/shipping/internal/orchestrator"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateShippingOptions returns the shipping options of every applicable
// fulfillment type, ordered ClickAndCollect, PUDO, HomeDelivery.
//
// embed restricts the computation to the listed types; every listed type
// must be supported by the site. An empty embed selects all supported
// types. Any handler failure fails the whole call.
func (e *Engine) CreateShippingOptions(ctx context.Context, req *fulfillment.ShippingOptionsRequest, embed []string) (result []fulfillment.ShippingOptionsResponse, err error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "CreateShippingOptions", trace.WithAttributes(
		attribute.String("site", req.SiteID),
		attribute.StringSlice("embed", embed),
	))
	defer span.End()

	log := e.logger.Ctx(ctx)
	defer func() {
		outcome := outcomeOf(err)
		if e.recorder != nil {
			e.recorder.RecordRequest(outcome, time.Since(start))
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			if fulfillment.IsClientError(err) {
				log.Info("Shipping options request rejected", zap.String("outcome", outcome), zap.Error(err))
			} else {
				log.Error("Shipping options request failed", zap.String("outcome", outcome), zap.Error(err))
			}
			return
		}
		log.Info("Shipping options computed",
			zap.String("site", req.SiteID),
			zap.Int("options", len(result)),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	site, err := e.sites.GetSiteID(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}

	supported, err := e.options.GetFulfillmentOptions(ctx, site, e.registry.CandidateTypes())
	if err != nil {
		return nil, err
	}

	calls, err := e.registry.Plan(req, site, supported, embed)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return []fulfillment.ShippingOptionsResponse{}, nil
	}

	responses, err := e.registry.Dispatch(ctx, calls, e.observe(ctx))
	if err != nil {
		return nil, err
	}

	result = make([]fulfillment.ShippingOptionsResponse, 0, len(responses))
	for _, resp := range responses {
		if resp != nil {
			result = append(result, *resp)
		}
	}
	return result, nil
}

func (e *Engine) observe(ctx context.Context) fulfillment.Observer {
	log := e.logger.Ctx(ctx)
	return func(call fulfillment.Call, elapsed time.Duration, err error) {
		if e.recorder != nil {
			e.recorder.RecordHandler(call.FulfillmentType, err, elapsed)
		}
		log.Debug("Fulfillment handler finished",
			zap.String("fulfillment_type", call.FulfillmentType),
			zap.String("variant", call.Variant),
			zap.Duration("elapsed", elapsed),
			zap.Bool("failed", err != nil),
		)
	}
}

func outcomeOf(err error) string {
	var fErr *fulfillment.Error
	switch {
	case err == nil:
		return OutcomeCompleted
	case errors.Is(err, fulfillment.ErrSiteNotFound):
		return OutcomeSiteNotFound
	case errors.Is(err, fulfillment.ErrUnsupportedEmbedType):
		return OutcomeUnsupportedEmbedType
	case errors.As(err, &fErr) && fErr.Code == fulfillment.CodeHandlerFailure:
		return OutcomeHandlerFailure
	default:
		return OutcomeError
	}
}
