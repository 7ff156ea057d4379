package fulfillment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// CandidateTypes is the fixed set of fulfillment types backed by a handler.
// It is the candidate list used when querying the types a site supports.
var CandidateTypes = []string{TypeHomeDelivery, TypeClickAndCollect, TypePUDO}

// DispatchOrder is the order in which results are reported, independent
// of the embed order and of handler completion order.
var DispatchOrder = []string{TypeClickAndCollect, TypePUDO, TypeHomeDelivery}

// Call is one planned handler invocation.
type Call struct {
	FulfillmentType string
	Variant         string
	Request         *HandlerRequest
}

// Observer is notified when a handler invocation completes.
type Observer func(call Call, elapsed time.Duration, err error)

// Middleware decorates a handler.
type Middleware func(next Handler) Handler

// Registry manages registered fulfillment handlers.
type Registry struct {
	handlers   map[string]Handler
	middleware []Middleware
	mu         sync.RWMutex
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler to the registry, replacing any handler with the
// same variant.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Variant()] = h
}

// Use appends middleware applied to every handler returned by Get. The
// first middleware is the outermost.
func (r *Registry) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// Get returns a handler by variant, wrapped in the registry middleware.
func (r *Registry) Get(variant string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, variant)
	}
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	return h, nil
}

// Variants returns the variants of all registered handlers.
func (r *Registry) Variants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// CandidateTypes returns the fulfillment types with a registered handler,
// in CandidateTypes order.
func (r *Registry) CandidateTypes() []string {
	types := make([]string, 0, len(CandidateTypes))
	for _, t := range CandidateTypes {
		if r.handles(t) {
			types = append(types, t)
		}
	}
	return types
}

// handles reports whether a handler is registered for fulfillmentType.
func (r *Registry) handles(fulfillmentType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[fulfillmentType]
	return ok
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Plan selects the handler invocations for a request.
//
// With an empty embed every supported type with a registered handler is
// planned. With a non-empty embed every embedded type must be supported and
// have a registered handler, otherwise the whole request is rejected with
// ErrUnsupportedEmbedType. Calls are returned in DispatchOrder.
func (r *Registry) Plan(req *ShippingOptionsRequest, site *SiteID, supported map[string]FulfillmentOption, embed []string) ([]Call, error) {
	wanted := make(map[string]struct{}, len(embed))
	for _, t := range embed {
		if _, ok := supported[t]; !ok || !isCandidate(t) || !r.handles(t) {
			return nil, NewError(t, CodeUnsupportedEmbedType,
				fmt.Sprintf("fulfillment type %q is not supported by site %q", t, site.Name)).
				WithCause(ErrUnsupportedEmbedType)
		}
		wanted[t] = struct{}{}
	}

	calls := make([]Call, 0, len(DispatchOrder))
	for _, t := range DispatchOrder {
		option, ok := supported[t]
		if !ok || !r.handles(t) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[t]; !ok {
				continue
			}
		}
		calls = append(calls, Call{
			FulfillmentType: t,
			Variant:         variantFor(t, req),
			Request: &HandlerRequest{
				Request:             req,
				Site:                site,
				Option:              option,
				ExcludedShippingIDs: req.ExcludedShippingIDs,
			},
		})
	}
	return calls, nil
}

// Dispatch invokes the planned calls concurrently and returns one result
// slot per call, in call order. A nil slot means the handler reported no
// options. The first handler error cancels the remaining calls and is
// returned once every goroutine has exited.
func (r *Registry) Dispatch(ctx context.Context, calls []Call, observe Observer) ([]*ShippingOptionsResponse, error) {
	results := make([]*ShippingOptionsResponse, len(calls))

	g, ctx := errgroup.WithContext(ctx)

	for i, call := range calls {
		g.Go(func() error {
			h, err := r.Get(call.Variant)
			if err != nil {
				return NewError(call.FulfillmentType, CodeHandlerFailure, "no handler registered").WithCause(err)
			}

			start := time.Now()
			resp, err := h.Handle(ctx, call.Request)
			if observe != nil {
				observe(call, time.Since(start), err)
			}
			if err != nil {
				return NewError(call.FulfillmentType, CodeHandlerFailure, "handler failed").WithCause(err)
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func isCandidate(t string) bool {
	for _, c := range CandidateTypes {
		if c == t {
			return true
		}
	}
	return false
}

func variantFor(fulfillmentType string, req *ShippingOptionsRequest) string {
	if fulfillmentType == TypePUDO && req.IsSiteIDOnly() {
		return VariantPUDOBySiteIDOnly
	}
	return fulfillmentType
}
