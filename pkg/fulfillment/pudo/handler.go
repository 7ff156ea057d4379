// Package pudo computes pickup/drop-off point options.
//
// Two variants are provided: Handler searches pickup points around an
// address or a chosen point, SiteOnlyHandler returns the site's default
// points for requests that carry no address.
package pudo

import (
	"context"

	"github.com/tournevent/shipping/pkg/dpe"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Handler is the address-based PUDO handler.
type Handler struct {
	apiClient dpe.APIClient
	logger    *otelzap.Logger
}

// New creates a PUDO handler.
func New(apiClient dpe.APIClient, logger *otelzap.Logger) *Handler {
	return &Handler{apiClient: apiClient, logger: logger}
}

// Variant returns fulfillment.TypePUDO.
func (h *Handler) Variant() string {
	return fulfillment.TypePUDO
}

// Handle returns the pickup points for the request.
func (h *Handler) Handle(ctx context.Context, req *fulfillment.HandlerRequest) (*fulfillment.ShippingOptionsResponse, error) {
	r := req.Request
	if r.PudoID == "" && !r.ShippingAddress.IsComplete() {
		return nil, fulfillment.NewError(fulfillment.TypePUDO, fulfillment.CodeValidation,
			"a pudo id or a complete address is required").WithCause(fulfillment.ErrValidation)
	}

	promise, err := h.apiClient.GetPickupPromise(ctx, dpe.NewPromiseRequest(req))
	if err != nil {
		h.logger.Ctx(ctx).Error("Pickup promise failed", zap.Error(err))
		return nil, dpe.AsFulfillmentError(fulfillment.TypePUDO, err)
	}
	return toResponse(req, promise), nil
}

// SiteOnlyHandler serves PUDO requests identified by site only.
type SiteOnlyHandler struct {
	apiClient dpe.APIClient
	logger    *otelzap.Logger
}

// NewSiteOnly creates the site-only PUDO handler.
func NewSiteOnly(apiClient dpe.APIClient, logger *otelzap.Logger) *SiteOnlyHandler {
	return &SiteOnlyHandler{apiClient: apiClient, logger: logger}
}

// Variant returns fulfillment.VariantPUDOBySiteIDOnly.
func (h *SiteOnlyHandler) Variant() string {
	return fulfillment.VariantPUDOBySiteIDOnly
}

// Handle returns the default pickup points of the site.
func (h *SiteOnlyHandler) Handle(ctx context.Context, req *fulfillment.HandlerRequest) (*fulfillment.ShippingOptionsResponse, error) {
	promise, err := h.apiClient.GetPickupDefaults(ctx, req.Site.Name, req.Request.PudoID)
	if err != nil {
		h.logger.Ctx(ctx).Error("Pickup defaults failed", zap.String("site", req.Site.Name), zap.Error(err))
		return nil, dpe.AsFulfillmentError(fulfillment.TypePUDO, err)
	}
	return toResponse(req, promise), nil
}

func toResponse(req *fulfillment.HandlerRequest, promise *dpe.PromiseResponse) *fulfillment.ShippingOptionsResponse {
	if len(promise.Locations) == 0 {
		return nil
	}
	resp := fulfillment.NewResponse(req.Option, req.Request.Locale)
	resp.Locations = dpe.ToLocations(promise.Locations)
	resp.Shipments = dpe.ToShipments(promise.Options, req.Request.ProductLines, nil)
	return resp
}

var (
	_ fulfillment.Handler = (*Handler)(nil)
	_ fulfillment.Handler = (*SiteOnlyHandler)(nil)
)
