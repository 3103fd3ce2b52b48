package decode

import (
	"context"
	"log/slog"
	"strings"

	"github.com/emperorhan/multichain-ingestor/internal/cache"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/emperorhan/multichain-ingestor/internal/store"
	"golang.org/x/sync/singleflight"
)

const defaultCacheCapacity = 50_000

// Resolver maps selectors and topic hashes to signatures. Lookups go through
// memory, then the signature table, then the external directory; results
// from the latter two are written back so each selector leaves the process
// at most once.
type Resolver struct {
	repo   store.SignatureRepository
	lookup Lookup
	logger *slog.Logger

	functions cache.Cache[string, model.FunctionSignature]
	events    cache.Cache[string, []model.EventSignature]
	missing   cache.Cache[string, struct{}]
	flight    singleflight.Group
}

type ResolverOption func(*Resolver)

// WithLookup enables the external directory fallback.
func WithLookup(l Lookup) ResolverOption {
	return func(r *Resolver) { r.lookup = l }
}

// WithCacheCapacity bounds each in-memory signature cache.
func WithCacheCapacity(n int) ResolverOption {
	return func(r *Resolver) {
		r.functions = newSigCache[model.FunctionSignature](n)
		r.events = newSigCache[[]model.EventSignature](n)
		r.missing = newSigCache[struct{}](n)
	}
}

func newSigCache[V any](capacity int) cache.Cache[string, V] {
	return cache.NewShardedLRU[string, V](capacity, 0, 0)
}

// NewResolver builds a resolver seeded with the builtin signatures. repo may
// be nil for memory-only operation.
func NewResolver(repo store.SignatureRepository, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		repo:      repo,
		logger:    logger.With("component", "signature_resolver"),
		functions: newSigCache[model.FunctionSignature](defaultCacheCapacity),
		events:    newSigCache[[]model.EventSignature](defaultCacheCapacity),
		missing:   newSigCache[struct{}](defaultCacheCapacity),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, f := range BuiltinFunctionSignatures() {
		r.functions.Put(f.Selector, f)
	}
	for _, e := range BuiltinEventSignatures() {
		existing, _ := r.events.Get(e.Topic)
		r.events.Put(e.Topic, append(existing, e))
	}
	return r
}

// SeedStore writes the builtin signatures to the signature table.
func (r *Resolver) SeedStore(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}
	for _, f := range BuiltinFunctionSignatures() {
		if err := r.repo.SaveFunction(ctx, &f); err != nil {
			return err
		}
	}
	for _, e := range BuiltinEventSignatures() {
		if err := r.repo.SaveEvent(ctx, &e); err != nil {
			return err
		}
	}
	return nil
}

// ResolveFunction returns the signature for a 0x-prefixed 4-byte selector.
func (r *Resolver) ResolveFunction(ctx context.Context, selector string) (*model.FunctionSignature, bool) {
	selector = strings.ToLower(selector)
	if sig, ok := r.functions.Get(selector); ok {
		metrics.DecodeCacheHits.WithLabelValues("function").Inc()
		return &sig, true
	}
	metrics.DecodeCacheMisses.WithLabelValues("function").Inc()
	if _, gone := r.missing.Get("fn:" + selector); gone {
		return nil, false
	}

	v, _, _ := r.flight.Do("fn:"+selector, func() (interface{}, error) {
		return r.resolveFunctionSlow(ctx, selector), nil
	})
	sig, _ := v.(*model.FunctionSignature)
	return sig, sig != nil
}

func (r *Resolver) resolveFunctionSlow(ctx context.Context, selector string) *model.FunctionSignature {
	if r.repo != nil {
		sig, err := r.repo.FindFunction(ctx, selector)
		if err != nil {
			r.logger.Warn("signature table lookup failed", "selector", selector, "error", err)
		} else if sig != nil {
			r.functions.Put(selector, *sig)
			return sig
		}
	}
	if r.lookup == nil {
		return nil
	}

	texts, err := r.lookup.LookupFunction(ctx, selector)
	if err != nil {
		r.logger.Debug("external function lookup failed", "selector", selector, "error", err)
		return nil
	}
	for _, text := range texts {
		p, err := parseSignature(text, nil, nil)
		if err != nil || FunctionSelector(p.canonicalText()) != selector {
			continue
		}
		sig := &model.FunctionSignature{
			Selector:      selector,
			Name:          p.Name,
			TextSignature: p.canonicalText(),
			Source:        model.SignatureSourceExternal,
		}
		r.functions.Put(selector, *sig)
		if r.repo != nil {
			if err := r.repo.SaveFunction(ctx, sig); err != nil {
				r.logger.Warn("persist function signature failed", "selector", selector, "error", err)
			}
		}
		return sig
	}
	r.missing.Put("fn:"+selector, struct{}{})
	return nil
}

// ResolveEvent returns the signature variants registered for a topic hash.
func (r *Resolver) ResolveEvent(ctx context.Context, topic string) ([]model.EventSignature, bool) {
	topic = strings.ToLower(topic)
	if sigs, ok := r.events.Get(topic); ok {
		metrics.DecodeCacheHits.WithLabelValues("event").Inc()
		return sigs, true
	}
	metrics.DecodeCacheMisses.WithLabelValues("event").Inc()
	if _, gone := r.missing.Get("ev:" + topic); gone {
		return nil, false
	}

	v, _, _ := r.flight.Do("ev:"+topic, func() (interface{}, error) {
		return r.resolveEventSlow(ctx, topic), nil
	})
	sigs, _ := v.([]model.EventSignature)
	return sigs, len(sigs) > 0
}

func (r *Resolver) resolveEventSlow(ctx context.Context, topic string) []model.EventSignature {
	if r.repo != nil {
		sigs, err := r.repo.FindEvents(ctx, topic)
		if err != nil {
			r.logger.Warn("signature table lookup failed", "topic", topic, "error", err)
		} else if len(sigs) > 0 {
			r.events.Put(topic, sigs)
			return sigs
		}
	}
	if r.lookup == nil {
		return nil
	}

	texts, err := r.lookup.LookupEvent(ctx, topic)
	if err != nil {
		r.logger.Debug("external event lookup failed", "topic", topic, "error", err)
		return nil
	}
	var sigs []model.EventSignature
	for _, text := range texts {
		p, err := parseSignature(text, nil, nil)
		if err != nil || EventTopic(p.canonicalText()) != topic {
			continue
		}
		sig := model.EventSignature{
			Topic:         topic,
			Name:          p.Name,
			TextSignature: p.canonicalText(),
			Source:        model.SignatureSourceExternal,
		}
		sigs = append(sigs, sig)
		if r.repo != nil {
			if err := r.repo.SaveEvent(ctx, &sig); err != nil {
				r.logger.Warn("persist event signature failed", "topic", topic, "error", err)
			}
		}
		// Distinct texts cannot share a topic hash, so one match is enough.
		break
	}
	if len(sigs) == 0 {
		r.missing.Put("ev:"+topic, struct{}{})
		return nil
	}
	r.events.Put(topic, sigs)
	return sigs
}
