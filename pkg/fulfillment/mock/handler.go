// Package mock provides a mock fulfillment handler for testing.
package mock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tournevent/shipping/pkg/fulfillment"
)

// Handler is a mock fulfillment handler for testing.
type Handler struct {
	variant string
	calls   atomic.Int32

	// Delay is waited (or the context cancelled) before answering.
	Delay time.Duration
	// Err is returned instead of a response when set.
	Err error
	// Empty makes the handler report no options.
	Empty bool
	// OnHandle replaces the default behaviour when set.
	OnHandle func(ctx context.Context, req *fulfillment.HandlerRequest) (*fulfillment.ShippingOptionsResponse, error)
}

// New creates a new mock handler for variant.
func New(variant string) *Handler {
	return &Handler{variant: variant}
}

// Variant returns the registry key.
func (h *Handler) Variant() string {
	return h.variant
}

// Calls returns how many times Handle was invoked.
func (h *Handler) Calls() int {
	return int(h.calls.Load())
}

// Handle returns a response labelled from the request's option.
func (h *Handler) Handle(ctx context.Context, req *fulfillment.HandlerRequest) (*fulfillment.ShippingOptionsResponse, error) {
	h.calls.Add(1)

	if h.Delay > 0 {
		select {
		case <-time.After(h.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if h.OnHandle != nil {
		return h.OnHandle(ctx, req)
	}
	if h.Err != nil {
		return nil, h.Err
	}
	if h.Empty {
		return nil, nil
	}

	locale := ""
	if req.Request != nil {
		locale = req.Request.Locale
	}
	resp := fulfillment.NewResponse(req.Option, locale)
	resp.Shipments = []fulfillment.Shipment{
		{
			ShippingMethodID: 1,
			Carrier:          "mock",
			Price:            4.95,
			Currency:         "USD",
			DeliveryWindow:   fulfillment.DeliveryWindow{From: "2026-01-05", To: "2026-01-07"},
		},
	}
	return resp, nil
}
