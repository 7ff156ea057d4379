// Package fulfillment defines the fulfillment handler abstraction shared by
// the home delivery, click-and-collect and pickup/drop-off backends.
package fulfillment

import (
	"context"
)

// HandlerRequest is everything a handler needs to compute the options of
// its fulfillment type.
type HandlerRequest struct {
	Request             *ShippingOptionsRequest
	Site                *SiteID
	Option              FulfillmentOption
	ExcludedShippingIDs []int
}

// Handler produces the shipping options of one fulfillment type.
type Handler interface {
	// Variant returns the registry key of the handler (a fulfillment type
	// or VariantPUDOBySiteIDOnly).
	Variant() string

	// Handle returns the options for the request. A nil response with a
	// nil error means the type has no options for this request.
	Handle(ctx context.Context, req *HandlerRequest) (*ShippingOptionsResponse, error)
}

// MethodCatalog resolves the shipping-method catalog of a site.
type MethodCatalog interface {
	GetShippingMethods(ctx context.Context, site *SiteID, fulfillmentType string) (*ShippingMethods, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	Name string
	Fn   func(ctx context.Context, req *HandlerRequest) (*ShippingOptionsResponse, error)
}

// Variant returns the registry key.
func (h HandlerFunc) Variant() string {
	return h.Name
}

// Handle calls Fn.
func (h HandlerFunc) Handle(ctx context.Context, req *HandlerRequest) (*ShippingOptionsResponse, error) {
	return h.Fn(ctx, req)
}
