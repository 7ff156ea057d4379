// Package memory provides in-memory site, fulfillment option and
// shipping-method stores for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tournevent/shipping/pkg/fulfillment"
)

// SiteStore is an in-memory site store.
type SiteStore struct {
	mu    sync.RWMutex
	sites map[string]fulfillment.SiteID
}

// NewSiteStore creates a store holding sites.
func NewSiteStore(sites ...fulfillment.SiteID) *SiteStore {
	s := &SiteStore{sites: make(map[string]fulfillment.SiteID)}
	for _, site := range sites {
		s.Put(site)
	}
	return s
}

// Put adds or replaces a site.
func (s *SiteStore) Put(site fulfillment.SiteID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites[site.Name] = site
}

// FindByName returns the site called name, or fulfillment.ErrSiteNotFound.
func (s *SiteStore) FindByName(ctx context.Context, name string) (*fulfillment.SiteID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	site, ok := s.sites[name]
	if !ok {
		return nil, fmt.Errorf("site %q: %w", name, fulfillment.ErrSiteNotFound)
	}
	return &site, nil
}

// FulfillmentStore is an in-memory fulfillment option store.
type FulfillmentStore struct {
	mu      sync.RWMutex
	options map[int64][]fulfillment.FulfillmentOption
}

// NewFulfillmentStore creates an empty store.
func NewFulfillmentStore() *FulfillmentStore {
	return &FulfillmentStore{options: make(map[int64][]fulfillment.FulfillmentOption)}
}

// Put adds options to a site.
func (s *FulfillmentStore) Put(siteID int64, options ...fulfillment.FulfillmentOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[siteID] = append(s.options[siteID], options...)
}

// FindBySiteAndTypes returns the options of site restricted to types.
func (s *FulfillmentStore) FindBySiteAndTypes(ctx context.Context, siteID int64, types []string) ([]fulfillment.FulfillmentOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []fulfillment.FulfillmentOption{}
	for _, opt := range s.options[siteID] {
		if slices.Contains(types, opt.FulfillmentType) {
			result = append(result, opt)
		}
	}
	return result, nil
}

// ShippingMethodStore is an in-memory shipping-method store.
type ShippingMethodStore struct {
	mu       sync.RWMutex
	catalogs map[string]fulfillment.ShippingMethods
}

// NewShippingMethodStore creates an empty store.
func NewShippingMethodStore() *ShippingMethodStore {
	return &ShippingMethodStore{catalogs: make(map[string]fulfillment.ShippingMethods)}
}

// Put adds or replaces a catalog.
func (s *ShippingMethodStore) Put(methods fulfillment.ShippingMethods) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogs[catalogKey(methods.SiteID, methods.FulfillmentType)] = methods
}

// FindBySiteAndType returns the catalog, or fulfillment.ErrNoShippingMethods.
func (s *ShippingMethodStore) FindBySiteAndType(ctx context.Context, siteID int64, fulfillmentType string) (*fulfillment.ShippingMethods, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	methods, ok := s.catalogs[catalogKey(siteID, fulfillmentType)]
	if !ok {
		return nil, fmt.Errorf("site %d %s: %w", siteID, fulfillmentType, fulfillment.ErrNoShippingMethods)
	}
	return &methods, nil
}

func catalogKey(siteID int64, fulfillmentType string) string {
	return fmt.Sprintf("%d/%s", siteID, fulfillmentType)
}
