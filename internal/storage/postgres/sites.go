package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tournevent/shipping/pkg/fulfillment"
)

const findSiteByName = `SELECT id, name, enterprise_code FROM site_id WHERE name = $1`

// SiteStore reads sites from the site_id table.
type SiteStore struct {
	db *sql.DB
}

// NewSiteStore creates a site store.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

// FindByName returns the site called name, or fulfillment.ErrSiteNotFound.
func (s *SiteStore) FindByName(ctx context.Context, name string) (*fulfillment.SiteID, error) {
	var site fulfillment.SiteID
	err := s.db.QueryRowContext(ctx, findSiteByName, name).Scan(&site.ID, &site.Name, &site.EnterpriseCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site %q: %w", name, fulfillment.ErrSiteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying site %q: %w", fulfillment.ErrBackend, name, err)
	}
	return &site, nil
}
