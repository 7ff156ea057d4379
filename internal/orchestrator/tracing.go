package orchestrator

import (
	"context"

	"github.com/tournevent/shipping/pkg/fulfillment"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware runs every handler invocation in its own span.
func TracingMiddleware(tracer trace.Tracer) fulfillment.Middleware {
	return func(next fulfillment.Handler) fulfillment.Handler {
		return fulfillment.HandlerFunc{
			Name: next.Variant(),
			Fn: func(ctx context.Context, req *fulfillment.HandlerRequest) (*fulfillment.ShippingOptionsResponse, error) {
				ctx, span := tracer.Start(ctx, "Handle "+next.Variant(), trace.WithAttributes(
					attribute.String("fulfillment_type", req.Option.FulfillmentType),
					attribute.String("variant", next.Variant()),
				))
				defer span.End()

				resp, err := next.Handle(ctx, req)
				if err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, "handler failed")
				}
				span.SetAttributes(attribute.Bool("empty", resp == nil))
				return resp, err
			},
		}
	}
}
