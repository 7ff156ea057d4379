// Package homedelivery computes home delivery options from the delivery
// promise engine.
package homedelivery

import (
	"context"
	"regexp"

	"github.com/tournevent/shipping/pkg/dpe"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var countryCode = regexp.MustCompile(`^[A-Z]{2}$`)

// Handler is the home delivery fulfillment handler.
//
// Unlike the other handlers it never fails on bad input: an address that
// cannot be validated yields the default response, carrying the option
// labels and the request's product lines in a shipment without a method.
type Handler struct {
	apiClient dpe.APIClient
	logger    *otelzap.Logger
}

// New creates a home delivery handler.
func New(apiClient dpe.APIClient, logger *otelzap.Logger) *Handler {
	return &Handler{
		apiClient: apiClient,
		logger:    logger,
	}
}

// Variant returns fulfillment.TypeHomeDelivery.
func (h *Handler) Variant() string {
	return fulfillment.TypeHomeDelivery
}

// Handle returns the delivery options to the request's shipping address.
func (h *Handler) Handle(ctx context.Context, req *fulfillment.HandlerRequest) (*fulfillment.ShippingOptionsResponse, error) {
	log := h.logger.Ctx(ctx)
	defaultResponse := newDefaultResponse(req)

	if reason := validateAddress(req.Request.ShippingAddress); reason != "" {
		log.Info("Returning default home delivery response", zap.String("reason", reason))
		return defaultResponse, nil
	}

	promise, err := h.apiClient.GetHomeDeliveryPromise(ctx, dpe.NewPromiseRequest(req))
	if err != nil {
		if dpe.IsValidation(err) {
			log.Info("Delivery promise rejected the address", zap.Error(err))
			return defaultResponse, nil
		}
		log.Error("Delivery promise failed", zap.Error(err))
		return nil, dpe.AsFulfillmentError(fulfillment.TypeHomeDelivery, err)
	}

	if len(promise.Options) == 0 {
		log.Info("Delivery promise returned no options", zap.String("promise_id", promise.PromiseID))
		return defaultResponse, nil
	}

	resp := fulfillment.NewResponse(req.Option, req.Request.Locale)
	resp.Shipments = dpe.ToShipments(promise.Options, req.Request.ProductLines, nil)
	return resp, nil
}

func newDefaultResponse(req *fulfillment.HandlerRequest) *fulfillment.ShippingOptionsResponse {
	resp := fulfillment.NewResponse(req.Option, req.Request.Locale)
	if len(req.Request.ProductLines) > 0 {
		resp.Shipments = []fulfillment.Shipment{{ProductLines: req.Request.ProductLines}}
	}
	return resp
}

// validateAddress returns why the address cannot be delivered to, or "".
func validateAddress(a *fulfillment.Address) string {
	switch {
	case a == nil:
		return "no shipping address"
	case !a.IsComplete():
		return "incomplete shipping address"
	case !countryCode.MatchString(a.Country):
		return "invalid country code"
	}
	return ""
}

var _ fulfillment.Handler = (*Handler)(nil)
