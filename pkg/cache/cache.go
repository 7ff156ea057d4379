// Package cache implements the cache-aside lookups used to avoid repeated
// site, fulfillment option and shipping-method queries.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// KeyDelimiter joins the namespace and identifying fields of a key.
const KeyDelimiter = "-"

// Store is a shared key-value store with per-entry expiry.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// is absent or expired.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Key identifies a cache entry.
type Key struct {
	Namespace string
	Parts     []string
}

// NewKey creates a key in namespace identified by parts.
func NewKey(namespace string, parts ...string) Key {
	return Key{Namespace: namespace, Parts: parts}
}

// String renders the key, e.g. "siteId-adidas-US".
func (k Key) String() string {
	return strings.Join(append([]string{k.Namespace}, k.Parts...), KeyDelimiter)
}

// Codec converts values to and from their cached text form.
type Codec[T any] interface {
	Encode(v T) (string, error)
	Decode(s string) (T, error)
}

// ErrNullValue is returned by JSONCodec for a JSON null. A null entry
// would decode to a nil pointer or slice and be served as a hit.
var ErrNullValue = errors.New("null cache value")

var jsonNull = []byte("null")

// JSONCodec encodes values as JSON. Null is rejected in both directions.
type JSONCodec[T any] struct{}

// Encode marshals v.
func (JSONCodec[T]) Encode(v T) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if bytes.Equal(b, jsonNull) {
		return "", ErrNullValue
	}
	return string(b), nil
}

// Decode unmarshals s.
func (JSONCodec[T]) Decode(s string) (T, error) {
	var v T
	if bytes.Equal(bytes.TrimSpace([]byte(s)), jsonNull) {
		return v, ErrNullValue
	}
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
