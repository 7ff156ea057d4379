// Package resolver resolves site metadata, fulfillment options and
// shipping-method catalogs through the shared cache.
package resolver

import (
	"context"
	"fmt"

	"github.com/tournevent/shipping/pkg/cache"
	"github.com/tournevent/shipping/pkg/fulfillment"
)

// Cache namespaces.
const (
	NamespaceSite               = "siteId"
	NamespaceFulfillmentOptions = "fulfillmentOptions"
	NamespaceShippingMethods    = "shippingMethods"
)

// SiteStore is the authoritative source of sites.
type SiteStore interface {
	FindByName(ctx context.Context, name string) (*fulfillment.SiteID, error)
}

// FulfillmentStore is the authoritative source of fulfillment options.
type FulfillmentStore interface {
	FindBySiteAndTypes(ctx context.Context, siteID int64, types []string) ([]fulfillment.FulfillmentOption, error)
}

// ShippingMethodStore is the authoritative source of shipping-method catalogs.
type ShippingMethodStore interface {
	FindBySiteAndType(ctx context.Context, siteID int64, fulfillmentType string) (*fulfillment.ShippingMethods, error)
}

// Sites resolves sites by name.
type Sites struct {
	cache *cache.Resolver
	store SiteStore
}

// NewSites creates a site resolver.
func NewSites(c *cache.Resolver, store SiteStore) *Sites {
	return &Sites{cache: c, store: store}
}

// GetSiteID returns the site called name. An unknown site yields
// fulfillment.ErrSiteNotFound and is not cached.
func (s *Sites) GetSiteID(ctx context.Context, name string) (*fulfillment.SiteID, error) {
	site, err := cache.Resolve(ctx, s.cache, cache.NewKey(NamespaceSite, name), cache.JSONCodec[*fulfillment.SiteID]{},
		func(ctx context.Context) (*fulfillment.SiteID, error) {
			return s.store.FindByName(ctx, name)
		})
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, fmt.Errorf("%w: %s", fulfillment.ErrSiteNotFound, name)
	}
	return site, nil
}

// FulfillmentOptions resolves the fulfillment options of a site.
type FulfillmentOptions struct {
	cache *cache.Resolver
	store FulfillmentStore
}

// NewFulfillmentOptions creates a fulfillment options resolver.
func NewFulfillmentOptions(c *cache.Resolver, store FulfillmentStore) *FulfillmentOptions {
	return &FulfillmentOptions{cache: c, store: store}
}

// GetFulfillmentOptions returns the options of site among candidateTypes,
// keyed by fulfillment type. The cached entry is the option list.
func (f *FulfillmentOptions) GetFulfillmentOptions(ctx context.Context, site *fulfillment.SiteID, candidateTypes []string) (map[string]fulfillment.FulfillmentOption, error) {
	options, err := cache.Resolve(ctx, f.cache, cache.NewKey(NamespaceFulfillmentOptions, site.Name),
		cache.JSONCodec[[]fulfillment.FulfillmentOption]{},
		func(ctx context.Context) ([]fulfillment.FulfillmentOption, error) {
			options, err := f.store.FindBySiteAndTypes(ctx, site.ID, candidateTypes)
			if options == nil && err == nil {
				options = []fulfillment.FulfillmentOption{}
			}
			return options, err
		})
	if err != nil {
		return nil, err
	}

	byType := make(map[string]fulfillment.FulfillmentOption, len(options))
	for _, opt := range options {
		byType[opt.FulfillmentType] = opt
	}
	return byType, nil
}

// ShippingMethods resolves shipping-method catalogs. It implements
// fulfillment.MethodCatalog.
type ShippingMethods struct {
	cache *cache.Resolver
	store ShippingMethodStore
}

// NewShippingMethods creates a shipping-method resolver.
func NewShippingMethods(c *cache.Resolver, store ShippingMethodStore) *ShippingMethods {
	return &ShippingMethods{cache: c, store: store}
}

// GetShippingMethods returns the catalog of site for fulfillmentType. A
// missing catalog yields fulfillment.ErrNoShippingMethods and is not cached.
func (m *ShippingMethods) GetShippingMethods(ctx context.Context, site *fulfillment.SiteID, fulfillmentType string) (*fulfillment.ShippingMethods, error) {
	methods, err := cache.Resolve(ctx, m.cache, cache.NewKey(NamespaceShippingMethods, site.Name, fulfillmentType),
		cache.JSONCodec[*fulfillment.ShippingMethods]{},
		func(ctx context.Context) (*fulfillment.ShippingMethods, error) {
			return m.store.FindBySiteAndType(ctx, site.ID, fulfillmentType)
		})
	if err != nil {
		return nil, err
	}
	if methods == nil {
		return nil, fmt.Errorf("%w: %s %s", fulfillment.ErrNoShippingMethods, site.Name, fulfillmentType)
	}
	return methods, nil
}

var _ fulfillment.MethodCatalog = (*ShippingMethods)(nil)
