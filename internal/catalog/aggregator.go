package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	applog "ektagames/internal/log"
	"ektagames/internal/domain"
	"ektagames/internal/metrics"
)

// ErrAllSourcesFailed is returned by Refresh when only fallback data was
// available.
var ErrAllSourcesFailed = errors.New("catalog: every upstream failed")

// Aggregator merges every upstream into one product list. Upstream failures
// never surface to callers; they degrade to fewer products.
type Aggregator struct {
	sources []Source
	fetch   Fetcher
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics

	sf singleflight.Group
}

type Option func(*Aggregator)

// WithCache enables caching of the merged catalog for ttl. A zero ttl keeps
// every call fresh.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(a *Aggregator) {
		a.cache = c
		a.ttl = ttl
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

func NewAggregator(sources []Source, fetch Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{sources: sources, fetch: fetch}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Aggregator) cacheEnabled() bool {
	return a.cache != nil && a.ttl > 0
}

// FetchCatalog returns the deduplicated catalog in source priority order.
func (a *Aggregator) FetchCatalog(ctx context.Context) []domain.Product {
	if a.cacheEnabled() {
		if cached, err := a.cache.Get(ctx); err == nil {
			return cached
		} else if !errors.Is(err, ErrCacheMiss) {
			applog.BgWarn("catalog.cache_get", err, nil)
		}
	}

	// The flight is shared, so one caller going away must not cut it short.
	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := a.sf.Do("catalog", func() (any, error) {
		products, allFailed := a.aggregate(flightCtx)
		if a.cacheEnabled() && !allFailed {
			if err := a.cache.Set(flightCtx, products, a.ttl); err != nil {
				applog.BgWarn("catalog.cache_set", err, nil)
			}
		}
		return products, nil
	})
	return slices.Clone(v.([]domain.Product))
}

// Refresh re-aggregates and overwrites the cache. A fallback-only catalog
// from a full outage leaves the cache as it was.
func (a *Aggregator) Refresh(ctx context.Context) (int, error) {
	products, allFailed := a.aggregate(ctx)
	if a.cache == nil || a.ttl <= 0 {
		return len(products), nil
	}
	if allFailed {
		return len(products), ErrAllSourcesFailed
	}
	if err := a.cache.Set(ctx, products, a.ttl); err != nil {
		return len(products), fmt.Errorf("refresh catalog cache: %w", err)
	}
	return len(products), nil
}

func (a *Aggregator) source(name string) (Source, bool) {
	for _, s := range a.sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// aggregate also reports whether every live source failed, in which case
// the result is fallback data only.
func (a *Aggregator) aggregate(ctx context.Context) ([]domain.Product, bool) {
	// Static sources only ever stand in for a failed feed.
	var live []Source
	for _, s := range a.sources {
		if s.Static == nil {
			live = append(live, s)
		}
	}

	results := make([][]domain.Product, len(live))
	errs := make([]error, len(live))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range live {
		g.Go(func() error {
			// Errors are kept per source so one failure never cancels the rest.
			results[i], errs[i] = a.fetchList(gctx, s)
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.Product
	var failures error
	failed := 0
	for i, s := range live {
		items := results[i]
		if errs[i] != nil {
			failed++
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", s.Name, errs[i]))
		}
		if (errs[i] != nil || len(items) == 0) && s.Fallback != "" {
			if fb, ok := a.source(s.Fallback); ok {
				items = slices.Clone(fb.Static)
				a.metrics.UpstreamFetch(fb.Name, "fallback")
			}
		}
		merged = append(merged, items...)
	}
	if failures != nil {
		applog.BgWarn("catalog.aggregate", failures, map[string]any{
			"failed_sources": len(multierr.Errors(failures)),
			"products":       len(merged),
		})
	}
	return Dedupe(merged), len(live) > 0 && failed == len(live)
}

func (a *Aggregator) fetchList(ctx context.Context, s Source) ([]domain.Product, error) {
	body, err := a.fetch.Get(ctx, s.Name, s.BaseURL+s.ListPath)
	if err != nil {
		a.metrics.UpstreamFetch(s.Name, "error")
		return nil, err
	}
	list := gjson.ParseBytes(body)
	if s.ListKey != "" {
		list = list.Get(s.ListKey)
	}
	if !list.IsArray() {
		a.metrics.UpstreamFetch(s.Name, "error")
		return nil, fmt.Errorf("unexpected list payload")
	}

	var out []domain.Product
	dropped := 0
	list.ForEach(func(_, item gjson.Result) bool {
		if p, ok := normalize(s, item); ok {
			out = append(out, p)
		} else {
			dropped++
		}
		return true
	})
	if dropped > 0 {
		applog.BgWarn("catalog.id_out_of_range", nil, map[string]any{"source": s.Name, "dropped": dropped})
	}
	a.metrics.UpstreamFetch(s.Name, "ok")
	return out, nil
}

// FetchProduct resolves one product by its namespaced id. Ids no source owns
// are answered without any network call.
func (a *Aggregator) FetchProduct(ctx context.Context, id int) (domain.Product, bool) {
	var owner Source
	found := false
	for _, s := range a.sources {
		if s.Owns(id) {
			owner, found = s, true
			break
		}
	}
	if !found {
		return domain.Product{}, false
	}

	for _, p := range a.FetchCatalog(ctx) {
		if p.ID == id {
			return p, true
		}
	}

	if owner.Static != nil {
		for _, p := range owner.Static {
			if p.ID == id {
				return p, true
			}
		}
		return domain.Product{}, false
	}

	body, err := a.fetch.Get(ctx, owner.Name, owner.BaseURL+fmt.Sprintf(owner.ItemPath, id-owner.Offset))
	if err != nil {
		if !errors.Is(err, ErrUpstreamNotFound) {
			a.metrics.UpstreamFetch(owner.Name, "error")
			applog.BgWarn("catalog.fetch_product", err, map[string]any{"source": owner.Name, "id": id})
		}
		return domain.Product{}, false
	}
	p, ok := normalize(owner, gjson.ParseBytes(body))
	if !ok || p.ID != id {
		return domain.Product{}, false
	}
	a.metrics.UpstreamFetch(owner.Name, "ok")
	return p, true
}

// Dedupe keeps the first product for each exact title.
func Dedupe(products []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, dup := seen[p.Title]; dup {
			continue
		}
		seen[p.Title] = struct{}{}
		out = append(out, p)
	}
	return out
}
