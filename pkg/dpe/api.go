// Package dpe provides the client of the delivery promise engine, the
// backend that computes delivery dates, collect stores and pickup points.
package dpe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// APIClient defines the delivery promise engine operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// GetHomeDeliveryPromise returns the delivery options to an address.
	GetHomeDeliveryPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error)

	// GetCollectPromise returns the stores the basket can be collected from.
	GetCollectPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error)

	// GetPickupPromise returns the pickup points near an address or pickup point.
	GetPickupPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error)

	// GetPickupDefaults returns the default pickup points of a site.
	GetPickupDefaults(ctx context.Context, siteName string, pudoID string) (*PromiseResponse, error)
}

// PromiseRequest is the body of the promise endpoints.
type PromiseRequest struct {
	SiteName          string   `json:"siteName"`
	EnterpriseCode    string   `json:"enterpriseCode,omitempty"`
	Locale            string   `json:"locale,omitempty"`
	Address           *Address `json:"address,omitempty"`
	StoreID           string   `json:"storeId,omitempty"`
	PudoID            string   `json:"pudoId,omitempty"`
	ShippingMethodIDs []int    `json:"shippingMethodIds,omitempty"`
	Lines             []Line   `json:"lines,omitempty"`
}

// Address is a destination address.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Line is a basket line.
type Line struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// PromiseResponse is returned by every promise endpoint.
type PromiseResponse struct {
	PromiseID string           `json:"promiseId"`
	Options   []DeliveryOption `json:"options,omitempty"`
	Locations []Location       `json:"locations,omitempty"`
}

// DeliveryOption is one promised way of shipping a set of lines.
type DeliveryOption struct {
	ShippingMethodID int      `json:"shippingMethodId"`
	Carrier          string   `json:"carrier"`
	Price            float64  `json:"price"`
	Currency         string   `json:"currency"`
	EarliestDate     string   `json:"earliestDate"` // YYYY-MM-DD
	LatestDate       string   `json:"latestDate"`   // YYYY-MM-DD
	LineIDs          []string `json:"lineIds"`
}

// Location is a store or pickup point.
type Location struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Address      Address        `json:"address"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	DistanceKm   float64        `json:"distanceKm,omitempty"`
	OpeningHours []OpeningHours `json:"openingHours,omitempty"`
}

// OpeningHours is the opening window of a location for one day.
type OpeningHours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`  // HH:MM
	Close string `json:"close"` // HH:MM
}

// APIError represents an error from the delivery promise engine.
type APIError struct {
	StatusCode int               `json:"-"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors,omitempty"` // Field-level errors
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dpe %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return e.Code + ": " + e.Message
}

// IsValidation reports whether err is the engine rejecting the request
// itself (a 4xx other than 429) rather than failing to answer it.
func IsValidation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
		apiErr.StatusCode != http.StatusTooManyRequests
}
