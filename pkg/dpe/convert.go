package dpe

import (
	"fmt"

	"github.com/tournevent/shipping/pkg/fulfillment"
)

// NewPromiseRequest builds the engine request for a handler request.
func NewPromiseRequest(req *fulfillment.HandlerRequest) *PromiseRequest {
	pr := &PromiseRequest{}
	if req.Site != nil {
		pr.SiteName = req.Site.Name
		pr.EnterpriseCode = req.Site.EnterpriseCode
	}
	if r := req.Request; r != nil {
		pr.Locale = r.Locale
		pr.Address = FromAddress(r.ShippingAddress)
		pr.StoreID = r.StoreID
		pr.PudoID = r.PudoID
		pr.Lines = FromProductLines(r.ProductLines)
	}
	return pr
}

// FromAddress converts a shipping address. A nil address stays nil.
func FromAddress(a *fulfillment.Address) *Address {
	if a == nil {
		return nil
	}
	return &Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// FromProductLines converts basket lines.
func FromProductLines(lines []fulfillment.ProductLine) []Line {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{ID: l.ID, SKU: l.SKU, Quantity: l.Quantity}
	}
	return out
}

// ToLocations converts engine locations.
func ToLocations(locations []Location) []fulfillment.Location {
	if len(locations) == 0 {
		return nil
	}
	out := make([]fulfillment.Location, len(locations))
	for i, l := range locations {
		loc := fulfillment.Location{
			ID:           l.ID,
			LocationName: l.Name,
			Address: fulfillment.Address{
				Line1:      l.Address.Line1,
				Line2:      l.Address.Line2,
				City:       l.Address.City,
				State:      l.Address.State,
				PostalCode: l.Address.PostalCode,
				Country:    l.Address.Country,
			},
			Distance: l.DistanceKm,
		}
		if l.Latitude != nil && l.Longitude != nil {
			loc.GeoLocation = &fulfillment.GeoLocation{Latitude: *l.Latitude, Longitude: *l.Longitude}
		}
		for _, h := range l.OpeningHours {
			loc.OpeningHours = append(loc.OpeningHours, toOpeningHours(h))
		}
		out[i] = loc
	}
	return out
}

// toOpeningHours splits "HH:MM" bounds into their hour and minute parts.
func toOpeningHours(h OpeningHours) fulfillment.OpeningHours {
	oh := fulfillment.OpeningHours{Day: h.Day}
	oh.StartHours, oh.StartMinutes = splitClock(h.Open)
	oh.EndHours, oh.EndMinutes = splitClock(h.Close)
	return oh
}

func splitClock(s string) (string, string) {
	if len(s) == 5 && s[2] == ':' {
		return s[:2], s[3:]
	}
	return s, "00"
}

// ToShipments converts delivery options, attaching the request lines each
// option covers. Options whose method is not in allowed are dropped when
// allowed is non-nil.
func ToShipments(options []DeliveryOption, lines []fulfillment.ProductLine, allowed map[int]struct{}) []fulfillment.Shipment {
	byID := make(map[string]fulfillment.ProductLine, len(lines))
	for _, l := range lines {
		byID[l.ID] = l
	}

	var out []fulfillment.Shipment
	for _, o := range options {
		if allowed != nil {
			if _, ok := allowed[o.ShippingMethodID]; !ok {
				continue
			}
		}
		s := fulfillment.Shipment{
			ShippingMethodID: o.ShippingMethodID,
			Carrier:          o.Carrier,
			Price:            o.Price,
			Currency:         o.Currency,
			DeliveryWindow:   fulfillment.DeliveryWindow{From: o.EarliestDate, To: o.LatestDate},
			ProductLines:     []fulfillment.ProductLine{},
		}
		for _, id := range o.LineIDs {
			if l, ok := byID[id]; ok {
				s.ProductLines = append(s.ProductLines, l)
			}
		}
		out = append(out, s)
	}
	return out
}

// AsFulfillmentError classifies an engine failure for fulfillmentType:
// rejected requests become validation errors, everything else a retryable
// backend error.
func AsFulfillmentError(fulfillmentType string, err error) error {
	if IsValidation(err) {
		return fulfillment.NewError(fulfillmentType, fulfillment.CodeValidation, "delivery promise rejected").
			WithCause(fmt.Errorf("%w: %w", fulfillment.ErrValidation, err))
	}
	return fulfillment.NewError(fulfillmentType, fulfillment.CodeBackend, "delivery promise failed").
		WithCause(fmt.Errorf("%w: %w", fulfillment.ErrBackend, err)).
		WithRetryable(true)
}
