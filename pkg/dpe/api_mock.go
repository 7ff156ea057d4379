package dpe

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing and
// local runs without a promise engine.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetHomeDeliveryPromise func(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error)
	OnGetCollectPromise      func(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error)
	OnGetPickupPromise       func(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error)
	OnGetPickupDefaults      func(ctx context.Context, siteName string, pudoID string) (*PromiseResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) before(ctx context.Context) error {
	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.SimulateErrors {
		return &APIError{StatusCode: http.StatusServiceUnavailable, Code: "MOCK_ERROR", Message: "Simulated API error"}
	}
	return nil
}

// GetHomeDeliveryPromise returns a standard and an express option covering
// every line.
func (m *MockAPIClient) GetHomeDeliveryPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error) {
	if err := m.before(ctx); err != nil {
		return nil, err
	}
	if m.OnGetHomeDeliveryPromise != nil {
		return m.OnGetHomeDeliveryPromise(ctx, req)
	}

	lineIDs := make([]string, 0, len(req.Lines))
	for _, l := range req.Lines {
		lineIDs = append(lineIDs, l.ID)
	}
	now := time.Now()

	return &PromiseResponse{
		PromiseID: "dpe-" + uuid.New().String()[:8],
		Options: []DeliveryOption{
			{
				ShippingMethodID: 1,
				Carrier:          "UPS",
				Price:            4.95,
				Currency:         "USD",
				EarliestDate:     now.AddDate(0, 0, 3).Format("2006-01-02"),
				LatestDate:       now.AddDate(0, 0, 5).Format("2006-01-02"),
				LineIDs:          lineIDs,
			},
			{
				ShippingMethodID: 2,
				Carrier:          "UPS",
				Price:            14.95,
				Currency:         "USD",
				EarliestDate:     now.AddDate(0, 0, 1).Format("2006-01-02"),
				LatestDate:       now.AddDate(0, 0, 1).Format("2006-01-02"),
				LineIDs:          lineIDs,
			},
		},
	}, nil
}

// GetCollectPromise returns one store.
func (m *MockAPIClient) GetCollectPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error) {
	if err := m.before(ctx); err != nil {
		return nil, err
	}
	if m.OnGetCollectPromise != nil {
		return m.OnGetCollectPromise(ctx, req)
	}

	storeID := req.StoreID
	if storeID == "" {
		storeID = "store-001"
	}
	return &PromiseResponse{
		PromiseID: "dpe-" + uuid.New().String()[:8],
		Locations: []Location{mockLocation(storeID, "Flagship Store")},
	}, nil
}

// GetPickupPromise returns one pickup point.
func (m *MockAPIClient) GetPickupPromise(ctx context.Context, req *PromiseRequest) (*PromiseResponse, error) {
	if err := m.before(ctx); err != nil {
		return nil, err
	}
	if m.OnGetPickupPromise != nil {
		return m.OnGetPickupPromise(ctx, req)
	}

	pudoID := req.PudoID
	if pudoID == "" {
		pudoID = "pudo-001"
	}
	return &PromiseResponse{
		PromiseID: "dpe-" + uuid.New().String()[:8],
		Locations: []Location{mockLocation(pudoID, "Corner Shop Pickup")},
	}, nil
}

// GetPickupDefaults returns the default pickup point of the site.
func (m *MockAPIClient) GetPickupDefaults(ctx context.Context, siteName string, pudoID string) (*PromiseResponse, error) {
	if err := m.before(ctx); err != nil {
		return nil, err
	}
	if m.OnGetPickupDefaults != nil {
		return m.OnGetPickupDefaults(ctx, siteName, pudoID)
	}

	if pudoID == "" {
		pudoID = "pudo-default"
	}
	return &PromiseResponse{
		PromiseID: "dpe-" + uuid.New().String()[:8],
		Locations: []Location{mockLocation(pudoID, siteName+" Pickup Point")},
	}, nil
}

func mockLocation(id, name string) Location {
	lat, lng := 45.5017, -73.5673
	return Location{
		ID:   id,
		Name: name,
		Address: Address{
			Line1:      "123 Main St",
			City:       "Montreal",
			State:      "QC",
			PostalCode: "H2X 1Y4",
			Country:    "CA",
		},
		Latitude:   &lat,
		Longitude:  &lng,
		DistanceKm: 1.2,
		OpeningHours: []OpeningHours{
			{Day: "MONDAY", Open: "09:00", Close: "18:00"},
			{Day: "SATURDAY", Open: "10:00", Close: "17:00"},
		},
	}
}

var _ APIClient = (*MockAPIClient)(nil)
