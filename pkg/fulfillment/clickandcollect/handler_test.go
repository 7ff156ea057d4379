package clickandcollect_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipping/pkg/dpe"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"github.com/tournevent/shipping/pkg/fulfillment/clickandcollect"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	methods *fulfillment.ShippingMethods
	err     error
	calls   int
}

func (c *fakeCatalog) GetShippingMethods(ctx context.Context, site *fulfillment.SiteID, fulfillmentType string) (*fulfillment.ShippingMethods, error) {
	c.calls++
	return c.methods, c.err
}

func catalog() *fakeCatalog {
	return &fakeCatalog{methods: &fulfillment.ShippingMethods{
		SiteID:          1,
		FulfillmentType: fulfillment.TypeClickAndCollect,
		Methods: []fulfillment.ShippingMethod{
			{ID: 10, Code: "CNC_STANDARD"},
			{ID: 11, Code: "CNC_EXPRESS"},
		},
	}}
}

func newRequest(storeID string, excluded []int) *fulfillment.HandlerRequest {
	return &fulfillment.HandlerRequest{
		Site:   &fulfillment.SiteID{ID: 1, Name: "adidas-US"},
		Option: fulfillment.FulfillmentOption{FulfillmentType: fulfillment.TypeClickAndCollect, Name: map[string]string{"en_US": "Collect in store"}},
		Request: &fulfillment.ShippingOptionsRequest{
			SiteID:  "adidas-US",
			Locale:  "en_US",
			StoreID: storeID,
		},
		ExcludedShippingIDs: excluded,
	}
}

func newHandler(api dpe.APIClient, c fulfillment.MethodCatalog) *clickandcollect.Handler {
	return clickandcollect.New(api, c, otelzap.New(zap.NewNop()))
}

func TestHandler_Handle_Success(t *testing.T) {
	api := dpe.NewMockAPIClient()
	var got *dpe.PromiseRequest
	api.OnGetCollectPromise = func(ctx context.Context, req *dpe.PromiseRequest) (*dpe.PromiseResponse, error) {
		got = req
		return &dpe.PromiseResponse{
			Locations: []dpe.Location{{ID: "store-1", Name: "Flagship"}},
			Options: []dpe.DeliveryOption{
				{ShippingMethodID: 10, Carrier: "STORE"},
				{ShippingMethodID: 11, Carrier: "STORE"},
			},
		}, nil
	}

	resp, err := newHandler(api, catalog()).Handle(context.Background(), newRequest("store-1", []int{11}))

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, []int{10}, got.ShippingMethodIDs)
	assert.Equal(t, "store-1", got.StoreID)
	assert.Equal(t, "Collect in store", resp.Name)
	require.Len(t, resp.Locations, 1)
	assert.Equal(t, "Flagship", resp.Locations[0].LocationName)
	require.Len(t, resp.Shipments, 1)
	assert.Equal(t, 10, resp.Shipments[0].ShippingMethodID)
}

func TestHandler_Handle_ValidationFailure(t *testing.T) {
	c := catalog()
	resp, err := newHandler(dpe.NewMockAPIClient(), c).Handle(context.Background(), newRequest("", nil))

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, fulfillment.ErrValidation)
	assert.Zero(t, c.calls)
}

func TestHandler_Handle_AllMethodsExcluded(t *testing.T) {
	api := dpe.NewMockAPIClient()
	api.SimulateErrors = true

	resp, err := newHandler(api, catalog()).Handle(context.Background(), newRequest("store-1", []int{10, 11}))

	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestHandler_Handle_NoCatalog(t *testing.T) {
	c := &fakeCatalog{err: fulfillment.ErrNoShippingMethods}

	resp, err := newHandler(dpe.NewMockAPIClient(), c).Handle(context.Background(), newRequest("store-1", nil))

	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestHandler_Handle_CatalogFailure(t *testing.T) {
	c := &fakeCatalog{err: errors.New("db down")}

	_, err := newHandler(dpe.NewMockAPIClient(), c).Handle(context.Background(), newRequest("store-1", nil))

	assert.ErrorIs(t, err, fulfillment.ErrBackend)
}

func TestHandler_Handle_NoLocations(t *testing.T) {
	api := dpe.NewMockAPIClient()
	api.OnGetCollectPromise = func(context.Context, *dpe.PromiseRequest) (*dpe.PromiseResponse, error) {
		return &dpe.PromiseResponse{}, nil
	}

	resp, err := newHandler(api, catalog()).Handle(context.Background(), newRequest("store-1", nil))

	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestHandler_Handle_BackendFailure(t *testing.T) {
	api := dpe.NewMockAPIClient()
	api.SimulateErrors = true

	_, err := newHandler(api, catalog()).Handle(context.Background(), newRequest("store-1", nil))

	assert.ErrorIs(t, err, fulfillment.ErrBackend)
	assert.False(t, fulfillment.IsClientError(err))
}
