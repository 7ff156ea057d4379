package fulfillment

import (
	"sort"

	"github.com/google/uuid"
)

// Fulfillment type keys as stored in the fulfillment option table.
const (
	TypeHomeDelivery    = "HomeDelivery"
	TypeClickAndCollect = "ClickAndCollect"
	TypePUDO            = "PUDO"
)

// VariantPUDOBySiteIDOnly is the handler variant used for PUDO requests
// that carry no shipping address.
const VariantPUDOBySiteIDOnly = "PUDOBySiteIdOnly"

// SiteID is the resolved metadata of a site.
type SiteID struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	EnterpriseCode string `json:"enterpriseCode"`
}

// FulfillmentOption describes one fulfillment type supported by a site.
type FulfillmentOption struct {
	FulfillmentType string            `json:"fulfillmentType"`
	Name            map[string]string `json:"name,omitempty"`
	Description     map[string]string `json:"description,omitempty"`
}

// LocalizedName returns the option name for locale.
func (o FulfillmentOption) LocalizedName(locale string) string {
	return localize(o.Name, locale, o.FulfillmentType)
}

// LocalizedDescription returns the option description for locale.
func (o FulfillmentOption) LocalizedDescription(locale string) string {
	return localize(o.Description, locale, o.FulfillmentType)
}

// localize picks the value for locale, then the alphabetically first
// locale, then fallback.
func localize(values map[string]string, locale, fallback string) string {
	if v, ok := values[locale]; ok && v != "" {
		return v
	}
	if len(values) == 0 {
		return fallback
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if v := values[keys[0]]; v != "" {
		return v
	}
	return fallback
}

// ShippingMethod is a single entry of a site's shipping-method catalog.
type ShippingMethod struct {
	ID      int    `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Carrier string `json:"carrier,omitempty"`
}

// ShippingMethods is the shipping-method catalog of a site for one fulfillment type.
type ShippingMethods struct {
	ShippingMethodID uuid.UUID        `json:"shippingMethodId"`
	SiteID           int64            `json:"siteId"`
	FulfillmentType  string           `json:"fulfillmentType"`
	Methods          []ShippingMethod `json:"methods"`
}

// Without returns the methods whose IDs are not in excluded.
func (m *ShippingMethods) Without(excluded []int) []ShippingMethod {
	if m == nil {
		return nil
	}
	skip := make(map[int]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}
	result := make([]ShippingMethod, 0, len(m.Methods))
	for _, method := range m.Methods {
		if _, ok := skip[method.ID]; ok {
			continue
		}
		result = append(result, method)
	}
	return result
}

// Address represents a shipping address.
type Address struct {
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Line1      string `json:"address1,omitempty"`
	Line2      string `json:"address2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"stateCode,omitempty"`
	PostalCode string `json:"zipcode,omitempty"`
	Country    string `json:"country,omitempty"` // ISO 3166-1 alpha-2
}

// IsComplete reports whether the address carries enough data to be
// validated against a delivery backend.
func (a *Address) IsComplete() bool {
	if a == nil {
		return false
	}
	return a.Line1 != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// ProductLine is a line of the basket the options are computed for.
type ProductLine struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	LineType string `json:"lineType,omitempty"`
}

// ShippingOptionsRequest is the input of a shipping options computation.
type ShippingOptionsRequest struct {
	SiteID              string        `json:"siteId"`
	Locale              string        `json:"locale,omitempty"`
	ShippingAddress     *Address      `json:"shippingAddress,omitempty"`
	StoreID             string        `json:"storeId,omitempty"`
	PudoID              string        `json:"pudoId,omitempty"`
	ExcludedShippingIDs []int         `json:"excludedShippingIds,omitempty"`
	ProductLines        []ProductLine `json:"productLines,omitempty"`
}

// IsSiteIDOnly reports whether the request identifies the destination by
// site (and optionally store or pickup point) without a shipping address.
func (r *ShippingOptionsRequest) IsSiteIDOnly() bool {
	return r.ShippingAddress == nil && r.SiteID != ""
}

// GeoLocation is a latitude/longitude pair.
type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OpeningHours is the opening window of a location for one day.
type OpeningHours struct {
	Day          string `json:"day"`
	StartHours   string `json:"startHours"`
	StartMinutes string `json:"startMinutes"`
	EndHours     string `json:"endHours"`
	EndMinutes   string `json:"endMinutes"`
}

// Location is a store or pickup point returned for collect/pickup options.
type Location struct {
	ID           string         `json:"id"`
	LocationName string         `json:"locationName"`
	Address      Address        `json:"address"`
	GeoLocation  *GeoLocation   `json:"geoLocation,omitempty"`
	OpeningHours []OpeningHours `json:"openingHours,omitempty"`
	Distance     float64        `json:"distance,omitempty"`
}

// DeliveryWindow is a promised delivery window.
type DeliveryWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Shipment groups product lines shipped with the same method.
type Shipment struct {
	ShippingMethodID int            `json:"shippingMethodId"`
	Carrier          string         `json:"carrier,omitempty"`
	Price            float64        `json:"price"`
	Currency         string         `json:"currency,omitempty"`
	DeliveryWindow   DeliveryWindow `json:"deliveryWindow"`
	ProductLines     []ProductLine  `json:"productLines"`
}

// ShippingOptionsResponse is the option set for one fulfillment type.
type ShippingOptionsResponse struct {
	FulfillmentType string     `json:"fulfillmentType"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Locations       []Location `json:"locations,omitempty"`
	Shipments       []Shipment `json:"shipments,omitempty"`
}

// NewResponse builds a response carrying the localized option labels and
// no locations or shipments.
func NewResponse(option FulfillmentOption, locale string) *ShippingOptionsResponse {
	return &ShippingOptionsResponse{
		FulfillmentType: option.FulfillmentType,
		Name:            option.LocalizedName(locale),
		Description:     option.LocalizedDescription(locale),
	}
}
