// Package clickandcollect computes in-store collection options.
package clickandcollect

import (
	"context"
	"errors"
	"fmt"

	"github.com/tournevent/shipping/pkg/dpe"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Handler is the click-and-collect fulfillment handler.
type Handler struct {
	apiClient dpe.APIClient
	catalog   fulfillment.MethodCatalog
	logger    *otelzap.Logger
}

// New creates a click-and-collect handler.
func New(apiClient dpe.APIClient, catalog fulfillment.MethodCatalog, logger *otelzap.Logger) *Handler {
	return &Handler{
		apiClient: apiClient,
		catalog:   catalog,
		logger:    logger,
	}
}

// Variant returns fulfillment.TypeClickAndCollect.
func (h *Handler) Variant() string {
	return fulfillment.TypeClickAndCollect
}

// Handle returns the stores the basket can be collected from, using only
// the site's shipping methods that were not excluded by the caller.
func (h *Handler) Handle(ctx context.Context, req *fulfillment.HandlerRequest) (*fulfillment.ShippingOptionsResponse, error) {
	log := h.logger.Ctx(ctx)
	r := req.Request

	if r.StoreID == "" && !r.ShippingAddress.IsComplete() {
		return nil, fulfillment.NewError(fulfillment.TypeClickAndCollect, fulfillment.CodeValidation,
			"a store id or a complete address is required").WithCause(fulfillment.ErrValidation)
	}

	catalog, err := h.catalog.GetShippingMethods(ctx, req.Site, fulfillment.TypeClickAndCollect)
	if errors.Is(err, fulfillment.ErrNoShippingMethods) {
		log.Info("Site has no click-and-collect shipping methods", zap.String("site", req.Site.Name))
		return nil, nil
	}
	if err != nil {
		return nil, fulfillment.NewError(fulfillment.TypeClickAndCollect, fulfillment.CodeBackend,
			"loading shipping methods").WithCause(fmt.Errorf("%w: %w", fulfillment.ErrBackend, err))
	}

	methods := catalog.Without(req.ExcludedShippingIDs)
	if len(methods) == 0 {
		log.Info("Every click-and-collect shipping method is excluded",
			zap.Ints("excluded_shipping_ids", req.ExcludedShippingIDs))
		return nil, nil
	}

	allowed := make(map[int]struct{}, len(methods))
	promiseReq := dpe.NewPromiseRequest(req)
	for _, m := range methods {
		allowed[m.ID] = struct{}{}
		promiseReq.ShippingMethodIDs = append(promiseReq.ShippingMethodIDs, m.ID)
	}

	promise, err := h.apiClient.GetCollectPromise(ctx, promiseReq)
	if err != nil {
		log.Error("Collect promise failed", zap.Error(err))
		return nil, dpe.AsFulfillmentError(fulfillment.TypeClickAndCollect, err)
	}
	if len(promise.Locations) == 0 {
		return nil, nil
	}

	resp := fulfillment.NewResponse(req.Option, r.Locale)
	resp.Locations = dpe.ToLocations(promise.Locations)
	resp.Shipments = dpe.ToShipments(promise.Options, r.ProductLines, allowed)
	return resp, nil
}

var _ fulfillment.Handler = (*Handler)(nil)
