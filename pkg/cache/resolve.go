package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Lookup results reported to the Observer.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultError   = "error"
	ResultCorrupt = "corrupt"
)

// Observer is notified of every cache lookup.
type Observer interface {
	RecordCacheLookup(namespace, result string)
}

// Resolver performs cache-aside lookups against a Store with a single TTL.
type Resolver struct {
	store    Store
	ttl      time.Duration
	logger   *otelzap.Logger
	observer Observer
}

// NewResolver creates a resolver. observer may be nil.
func NewResolver(store Store, ttl time.Duration, logger *otelzap.Logger, observer Observer) *Resolver {
	return &Resolver{
		store:    store,
		ttl:      ttl,
		logger:   logger,
		observer: observer,
	}
}

// TTL returns the expiry applied to every entry.
func (r *Resolver) TTL() time.Duration {
	return r.ttl
}

// Resolve returns the cached value of key, or computes, caches and returns it.
//
// A failing or unreachable store is treated as a miss, and a failed write
// is logged and ignored. A compute error is returned as is and nothing is
// written.
func Resolve[T any](ctx context.Context, r *Resolver, key Key, codec Codec[T], compute func(context.Context) (T, error)) (T, error) {
	k := key.String()
	log := r.logger.Ctx(ctx)

	cached, found, err := r.store.Get(ctx, k)
	switch {
	case err != nil:
		r.observe(key.Namespace, ResultError)
		log.Warn("Cache read failed, falling back to source", zap.String("key", k), zap.Error(err))
	case found:
		v, decodeErr := codec.Decode(cached)
		if decodeErr == nil {
			r.observe(key.Namespace, ResultHit)
			log.Debug("Cache hit", zap.String("key", k))
			return v, nil
		}
		r.observe(key.Namespace, ResultCorrupt)
		log.Warn("Discarding undecodable cache entry", zap.String("key", k), zap.Error(decodeErr))
	default:
		r.observe(key.Namespace, ResultMiss)
	}

	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := codec.Encode(v)
	if err != nil {
		log.Error("Skipping cache write", zap.String("key", k), zap.Error(fmt.Errorf("encoding: %w", err)))
		return v, nil
	}

	if err := r.store.Set(ctx, k, encoded, r.ttl); err != nil {
		log.Warn("Cache write failed", zap.String("key", k), zap.Error(err))
	}
	return v, nil
}

func (r *Resolver) observe(namespace, result string) {
	if r.observer != nil {
		r.observer.RecordCacheLookup(namespace, result)
	}
}
