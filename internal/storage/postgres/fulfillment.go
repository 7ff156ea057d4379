package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tournevent/shipping/pkg/fulfillment"
)

const (
	findOptionsBySiteAndTypes = `SELECT fulfillment_type, name, description FROM fulfillment_option WHERE site_id = $1 AND fulfillment_type = ANY($2) ORDER BY fulfillment_type`

	findMethodsBySiteAndType = `SELECT id, methods FROM shipping_methods WHERE site_id = $1 AND fulfillment_type = $2`
)

// FulfillmentStore reads the fulfillment_option table. Localized names and
// descriptions are JSONB objects keyed by locale.
type FulfillmentStore struct {
	db *sql.DB
}

// NewFulfillmentStore creates a fulfillment option store.
func NewFulfillmentStore(db *sql.DB) *FulfillmentStore {
	return &FulfillmentStore{db: db}
}

// FindBySiteAndTypes returns the options of site restricted to types.
func (s *FulfillmentStore) FindBySiteAndTypes(ctx context.Context, siteID int64, types []string) ([]fulfillment.FulfillmentOption, error) {
	rows, err := s.db.QueryContext(ctx, findOptionsBySiteAndTypes, siteID, pq.Array(types))
	if err != nil {
		return nil, fmt.Errorf("%w: querying fulfillment options of site %d: %w", fulfillment.ErrBackend, siteID, err)
	}
	defer rows.Close()

	options := []fulfillment.FulfillmentOption{}
	for rows.Next() {
		var (
			opt               fulfillment.FulfillmentOption
			name, description []byte
		)
		if err := rows.Scan(&opt.FulfillmentType, &name, &description); err != nil {
			return nil, fmt.Errorf("%w: scanning fulfillment option: %w", fulfillment.ErrBackend, err)
		}
		if err := unmarshalLocalized(name, &opt.Name); err != nil {
			return nil, fmt.Errorf("%w: fulfillment option %s name: %w", fulfillment.ErrBackend, opt.FulfillmentType, err)
		}
		if err := unmarshalLocalized(description, &opt.Description); err != nil {
			return nil, fmt.Errorf("%w: fulfillment option %s description: %w", fulfillment.ErrBackend, opt.FulfillmentType, err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating fulfillment options: %w", fulfillment.ErrBackend, err)
	}
	return options, nil
}

func unmarshalLocalized(raw []byte, dst *map[string]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// ShippingMethodStore reads the shipping_methods table, one JSONB catalog
// per site and fulfillment type.
type ShippingMethodStore struct {
	db *sql.DB
}

// NewShippingMethodStore creates a shipping method store.
func NewShippingMethodStore(db *sql.DB) *ShippingMethodStore {
	return &ShippingMethodStore{db: db}
}

// FindBySiteAndType returns the catalog, or fulfillment.ErrNoShippingMethods.
func (s *ShippingMethodStore) FindBySiteAndType(ctx context.Context, siteID int64, fulfillmentType string) (*fulfillment.ShippingMethods, error) {
	var (
		id      uuid.UUID
		methods []byte
	)
	err := s.db.QueryRowContext(ctx, findMethodsBySiteAndType, siteID, fulfillmentType).Scan(&id, &methods)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site %d %s: %w", siteID, fulfillmentType, fulfillment.ErrNoShippingMethods)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying shipping methods of site %d: %w", fulfillment.ErrBackend, siteID, err)
	}

	result := &fulfillment.ShippingMethods{
		ShippingMethodID: id,
		SiteID:           siteID,
		FulfillmentType:  fulfillmentType,
	}
	if err := json.Unmarshal(methods, &result.Methods); err != nil {
		return nil, fmt.Errorf("%w: decoding shipping methods of site %d: %w", fulfillment.ErrBackend, siteID, err)
	}
	return result, nil
}
