package fulfillment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"github.com/tournevent/shipping/pkg/fulfillment/mock"
)

var testSite = &fulfillment.SiteID{ID: 1, Name: "adidas-US", EnterpriseCode: "adidas"}

func supportedAll() map[string]fulfillment.FulfillmentOption {
	return map[string]fulfillment.FulfillmentOption{
		fulfillment.TypeHomeDelivery:    {FulfillmentType: fulfillment.TypeHomeDelivery},
		fulfillment.TypeClickAndCollect: {FulfillmentType: fulfillment.TypeClickAndCollect},
		fulfillment.TypePUDO:            {FulfillmentType: fulfillment.TypePUDO},
	}
}

func addressRequest() *fulfillment.ShippingOptionsRequest {
	return &fulfillment.ShippingOptionsRequest{
		SiteID: "adidas-US",
		ShippingAddress: &fulfillment.Address{
			Line1:      "47 Pearl Street",
			City:       "New York",
			PostalCode: "10004",
			Country:    "US",
		},
	}
}

func fullRegistry() *fulfillment.Registry {
	registry := fulfillment.NewRegistry()
	for _, v := range []string{
		fulfillment.TypeHomeDelivery,
		fulfillment.TypeClickAndCollect,
		fulfillment.TypePUDO,
		fulfillment.VariantPUDOBySiteIDOnly,
	} {
		registry.Register(mock.New(v))
	}
	return registry
}

func plannedTypes(calls []fulfillment.Call) []string {
	types := make([]string, len(calls))
	for i, c := range calls {
		types[i] = c.FulfillmentType
	}
	return types
}

func TestRegistry_Register(t *testing.T) {
	registry := fulfillment.NewRegistry()
	registry.Register(mock.New(fulfillment.TypeHomeDelivery))

	got, err := registry.Get(fulfillment.TypeHomeDelivery)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.TypeHomeDelivery, got.Variant())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := fulfillment.NewRegistry()

	registry.Register(mock.New(fulfillment.TypePUDO))
	registry.Register(mock.New(fulfillment.TypePUDO))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := fulfillment.NewRegistry()

	_, err := registry.Get("nonexistent")
	assert.True(t, errors.Is(err, fulfillment.ErrHandlerNotFound))
}

func TestRegistry_Variants(t *testing.T) {
	registry := fulfillment.NewRegistry()
	registry.Register(mock.New(fulfillment.TypeHomeDelivery))
	registry.Register(mock.New(fulfillment.TypePUDO))
	registry.Register(mock.New(fulfillment.VariantPUDOBySiteIDOnly))

	assert.ElementsMatch(t,
		[]string{fulfillment.TypeHomeDelivery, fulfillment.TypePUDO, fulfillment.VariantPUDOBySiteIDOnly},
		registry.Variants())
}

func TestRegistry_Plan_EmptyEmbedUsesDispatchOrder(t *testing.T) {
	registry := fullRegistry()

	calls, err := registry.Plan(addressRequest(), testSite, supportedAll(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{
		fulfillment.TypeClickAndCollect,
		fulfillment.TypePUDO,
		fulfillment.TypeHomeDelivery,
	}, plannedTypes(calls))
}

func TestRegistry_Plan_EmbedIntersection(t *testing.T) {
	registry := fullRegistry()

	embed := []string{fulfillment.TypeHomeDelivery, fulfillment.TypeClickAndCollect, fulfillment.TypeHomeDelivery}
	calls, err := registry.Plan(addressRequest(), testSite, supportedAll(), embed)

	require.NoError(t, err)
	assert.Equal(t, []string{fulfillment.TypeClickAndCollect, fulfillment.TypeHomeDelivery}, plannedTypes(calls))
}

func TestRegistry_Plan_UnsupportedEmbed(t *testing.T) {
	registry := fullRegistry()
	supported := map[string]fulfillment.FulfillmentOption{
		fulfillment.TypeHomeDelivery: {FulfillmentType: fulfillment.TypeHomeDelivery},
	}

	tests := []struct {
		name  string
		embed []string
	}{
		{"not supported by site", []string{fulfillment.TypeHomeDelivery, fulfillment.TypePUDO}},
		{"unknown type", []string{"Drone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls, err := registry.Plan(addressRequest(), testSite, supported, tt.embed)
			assert.Nil(t, calls)
			assert.True(t, errors.Is(err, fulfillment.ErrUnsupportedEmbedType))
			assert.True(t, fulfillment.IsClientError(err))
		})
	}
}

func TestRegistry_Plan_EmptySupport(t *testing.T) {
	registry := fullRegistry()

	calls, err := registry.Plan(addressRequest(), testSite, map[string]fulfillment.FulfillmentOption{}, nil)
	require.NoError(t, err)
	assert.Empty(t, calls)

	_, err = registry.Plan(addressRequest(), testSite, map[string]fulfillment.FulfillmentOption{},
		[]string{fulfillment.TypeHomeDelivery})
	assert.True(t, errors.Is(err, fulfillment.ErrUnsupportedEmbedType))
}

func TestRegistry_Plan_SiteIDOnlyPUDO(t *testing.T) {
	registry := fullRegistry()
	req := &fulfillment.ShippingOptionsRequest{SiteID: "adidas-DE", PudoID: "pudo-7"}

	calls, err := registry.Plan(req, testSite, supportedAll(), []string{fulfillment.TypePUDO})

	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, fulfillment.TypePUDO, calls[0].FulfillmentType)
	assert.Equal(t, fulfillment.VariantPUDOBySiteIDOnly, calls[0].Variant)
}

func TestRegistry_Plan_PassesExcludedIDs(t *testing.T) {
	registry := fullRegistry()
	req := addressRequest()
	req.ExcludedShippingIDs = []int{3, 4}

	calls, err := registry.Plan(req, testSite, supportedAll(), []string{fulfillment.TypeClickAndCollect})

	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, []int{3, 4}, calls[0].Request.ExcludedShippingIDs)
	assert.Equal(t, testSite, calls[0].Request.Site)
}

func TestRegistry_Dispatch_OrderIndependentOfCompletion(t *testing.T) {
	registry := fulfillment.NewRegistry()

	cnc := mock.New(fulfillment.TypeClickAndCollect)
	cnc.Delay = 30 * time.Millisecond
	pudo := mock.New(fulfillment.TypePUDO)
	pudo.Delay = 15 * time.Millisecond
	registry.Register(cnc)
	registry.Register(pudo)
	registry.Register(mock.New(fulfillment.TypeHomeDelivery))

	calls, err := registry.Plan(addressRequest(), testSite, supportedAll(), nil)
	require.NoError(t, err)

	results, err := registry.Dispatch(context.Background(), calls, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, fulfillment.TypeClickAndCollect, results[0].FulfillmentType)
	assert.Equal(t, fulfillment.TypePUDO, results[1].FulfillmentType)
	assert.Equal(t, fulfillment.TypeHomeDelivery, results[2].FulfillmentType)
}

func TestRegistry_Dispatch_EmptyResultLeavesNilSlot(t *testing.T) {
	registry := fulfillment.NewRegistry()
	pudo := mock.New(fulfillment.TypePUDO)
	pudo.Empty = true
	registry.Register(pudo)
	registry.Register(mock.New(fulfillment.TypeHomeDelivery))

	calls, err := registry.Plan(addressRequest(), testSite, supportedAll(),
		[]string{fulfillment.TypePUDO, fulfillment.TypeHomeDelivery})
	require.NoError(t, err)

	results, err := registry.Dispatch(context.Background(), calls, nil)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Nil(t, results[0])
	assert.Equal(t, fulfillment.TypeHomeDelivery, results[1].FulfillmentType)
}

func TestRegistry_Dispatch_FailureCancelsSiblings(t *testing.T) {
	registry := fulfillment.NewRegistry()

	cnc := mock.New(fulfillment.TypeClickAndCollect)
	cnc.Err = fulfillment.ErrValidation
	slow := mock.New(fulfillment.TypeHomeDelivery)
	slow.Delay = 5 * time.Second
	registry.Register(cnc)
	registry.Register(slow)

	calls, err := registry.Plan(addressRequest(), testSite, supportedAll(),
		[]string{fulfillment.TypeClickAndCollect, fulfillment.TypeHomeDelivery})
	require.NoError(t, err)

	start := time.Now()
	results, err := registry.Dispatch(context.Background(), calls, nil)

	assert.Nil(t, results)
	assert.True(t, errors.Is(err, fulfillment.ErrValidation))
	assert.True(t, errors.Is(err, fulfillment.NewError("", fulfillment.CodeHandlerFailure, "")))
	assert.Less(t, time.Since(start), 2*time.Second, "sibling should observe cancellation")
}

func TestRegistry_Dispatch_MissingHandler(t *testing.T) {
	registry := fulfillment.NewRegistry()
	registry.Register(mock.New(fulfillment.TypePUDO))
	req := &fulfillment.ShippingOptionsRequest{SiteID: "adidas-US", PudoID: "pudo-7"}

	calls, err := registry.Plan(req, testSite, supportedAll(), []string{fulfillment.TypePUDO})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, fulfillment.VariantPUDOBySiteIDOnly, calls[0].Variant)

	_, err = registry.Dispatch(context.Background(), calls, nil)
	assert.True(t, errors.Is(err, fulfillment.ErrHandlerNotFound))
}

func TestRegistry_Dispatch_Observer(t *testing.T) {
	registry := fulfillment.NewRegistry()
	registry.Register(mock.New(fulfillment.TypeClickAndCollect))
	registry.Register(mock.New(fulfillment.TypeHomeDelivery))

	calls, err := registry.Plan(addressRequest(), testSite, supportedAll(),
		[]string{fulfillment.TypeClickAndCollect, fulfillment.TypeHomeDelivery})
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[string]bool{}
	_, err = registry.Dispatch(context.Background(), calls, func(call fulfillment.Call, _ time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		seen[call.Variant] = err == nil
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		fulfillment.TypeClickAndCollect: true,
		fulfillment.TypeHomeDelivery:    true,
	}, seen)
}

func TestRegistry_Use(t *testing.T) {
	registry := fulfillment.NewRegistry()
	registry.Register(mock.New(fulfillment.TypeHomeDelivery))

	var order []string
	wrap := func(name string) fulfillment.Middleware {
		return func(next fulfillment.Handler) fulfillment.Handler {
			return fulfillment.HandlerFunc{
				Name: next.Variant(),
				Fn: func(ctx context.Context, req *fulfillment.HandlerRequest) (*fulfillment.ShippingOptionsResponse, error) {
					order = append(order, name)
					return next.Handle(ctx, req)
				},
			}
		}
	}
	registry.Use(wrap("outer"), wrap("inner"))

	h, err := registry.Get(fulfillment.TypeHomeDelivery)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.TypeHomeDelivery, h.Variant())

	resp, err := h.Handle(context.Background(), &fulfillment.HandlerRequest{
		Request: addressRequest(),
		Option:  fulfillment.FulfillmentOption{FulfillmentType: fulfillment.TypeHomeDelivery},
	})
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRegistry_CandidateTypes(t *testing.T) {
	assert.Equal(t, fulfillment.CandidateTypes, fullRegistry().CandidateTypes())

	registry := fulfillment.NewRegistry()
	registry.Register(mock.New(fulfillment.TypePUDO))
	registry.Register(mock.New(fulfillment.TypeHomeDelivery))
	assert.Equal(t, []string{fulfillment.TypeHomeDelivery, fulfillment.TypePUDO}, registry.CandidateTypes())

	assert.Empty(t, fulfillment.NewRegistry().CandidateTypes())
}

func TestRegistry_Plan_SkipsTypesWithoutHandler(t *testing.T) {
	registry := fulfillment.NewRegistry()
	registry.Register(mock.New(fulfillment.TypeHomeDelivery))

	calls, err := registry.Plan(addressRequest(), testSite, supportedAll(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{fulfillment.TypeHomeDelivery}, plannedTypes(calls))

	calls, err = registry.Plan(addressRequest(), testSite, supportedAll(), []string{fulfillment.TypePUDO})
	assert.Nil(t, calls)
	assert.True(t, errors.Is(err, fulfillment.ErrUnsupportedEmbedType))
}
