package pudo_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipping/pkg/dpe"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"github.com/tournevent/shipping/pkg/fulfillment/pudo"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var logger = otelzap.New(zap.NewNop())

func newRequest(r *fulfillment.ShippingOptionsRequest) *fulfillment.HandlerRequest {
	return &fulfillment.HandlerRequest{
		Site:    &fulfillment.SiteID{ID: 1, Name: "adidas-FR"},
		Option:  fulfillment.FulfillmentOption{FulfillmentType: fulfillment.TypePUDO, Name: map[string]string{"fr_FR": "Point relais"}},
		Request: r,
	}
}

func TestHandler_Handle_ByPudoID(t *testing.T) {
	api := dpe.NewMockAPIClient()

	resp, err := pudo.New(api, logger).Handle(context.Background(),
		newRequest(&fulfillment.ShippingOptionsRequest{SiteID: "adidas-FR", Locale: "fr_FR", PudoID: "pudo-9"}))

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, fulfillment.TypePUDO, resp.FulfillmentType)
	assert.Equal(t, "Point relais", resp.Name)
	require.Len(t, resp.Locations, 1)
	assert.Equal(t, "pudo-9", resp.Locations[0].ID)
	assert.NotNil(t, resp.Locations[0].GeoLocation)
}

func TestHandler_Handle_ValidationFailure(t *testing.T) {
	api := dpe.NewMockAPIClient()
	api.OnGetPickupPromise = func(context.Context, *dpe.PromiseRequest) (*dpe.PromiseResponse, error) {
		t.Fatal("engine must not be called")
		return nil, nil
	}

	_, err := pudo.New(api, logger).Handle(context.Background(),
		newRequest(&fulfillment.ShippingOptionsRequest{
			SiteID:          "adidas-FR",
			ShippingAddress: &fulfillment.Address{City: "Paris"},
		}))

	require.Error(t, err)
	assert.ErrorIs(t, err, fulfillment.ErrValidation)
	assert.True(t, fulfillment.IsClientError(err))
}

func TestHandler_Handle_RejectedByEngine(t *testing.T) {
	api := dpe.NewMockAPIClient()
	api.OnGetPickupPromise = func(context.Context, *dpe.PromiseRequest) (*dpe.PromiseResponse, error) {
		return nil, &dpe.APIError{StatusCode: http.StatusNotFound, Code: "UNKNOWN_PUDO"}
	}

	_, err := pudo.New(api, logger).Handle(context.Background(),
		newRequest(&fulfillment.ShippingOptionsRequest{SiteID: "adidas-FR", PudoID: "nope"}))

	assert.ErrorIs(t, err, fulfillment.ErrValidation)
}

func TestHandler_Handle_NoLocations(t *testing.T) {
	api := dpe.NewMockAPIClient()
	api.OnGetPickupPromise = func(context.Context, *dpe.PromiseRequest) (*dpe.PromiseResponse, error) {
		return &dpe.PromiseResponse{PromiseID: "p"}, nil
	}

	resp, err := pudo.New(api, logger).Handle(context.Background(),
		newRequest(&fulfillment.ShippingOptionsRequest{SiteID: "adidas-FR", PudoID: "pudo-9"}))

	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestSiteOnlyHandler_Handle(t *testing.T) {
	api := dpe.NewMockAPIClient()
	var gotSite, gotPudo string
	api.OnGetPickupDefaults = func(ctx context.Context, siteName, pudoID string) (*dpe.PromiseResponse, error) {
		gotSite, gotPudo = siteName, pudoID
		return &dpe.PromiseResponse{Locations: []dpe.Location{{ID: "d1", Name: "Default point"}}}, nil
	}
	h := pudo.NewSiteOnly(api, logger)

	resp, err := h.Handle(context.Background(),
		newRequest(&fulfillment.ShippingOptionsRequest{SiteID: "adidas-FR", Locale: "fr_FR"}))

	require.NoError(t, err)
	assert.Equal(t, fulfillment.VariantPUDOBySiteIDOnly, h.Variant())
	assert.Equal(t, "adidas-FR", gotSite)
	assert.Empty(t, gotPudo)
	require.NotNil(t, resp)
	assert.Equal(t, fulfillment.TypePUDO, resp.FulfillmentType)
	assert.Equal(t, "Default point", resp.Locations[0].LocationName)
}

func TestSiteOnlyHandler_Handle_BackendFailure(t *testing.T) {
	api := dpe.NewMockAPIClient()
	api.SimulateErrors = true

	_, err := pudo.NewSiteOnly(api, logger).Handle(context.Background(),
		newRequest(&fulfillment.ShippingOptionsRequest{SiteID: "adidas-FR"}))

	assert.ErrorIs(t, err, fulfillment.ErrBackend)
}
