package catalog

import (
	"context"
	"slices"
	"strings"
	"time"

	"ektagames/internal/domain"
)

const (
	SortPriceAsc   = "price-asc"
	SortPriceDesc  = "price-desc"
	SortRatingDesc = "rating-desc"
)

type Query struct {
	Category string
	Search   string
	Sort     string
}

// Apply filters by category, then by title substring, then sorts. The input
// slice is never modified; unknown sort keys keep input order.
func Apply(products []domain.Product, q Query) []domain.Product {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return b.Price.Cmp(a.Price) })
	case SortRatingDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			switch {
			case a.Rating.Rate > b.Rating.Rate:
				return -1
			case a.Rating.Rate < b.Rating.Rate:
				return 1
			}
			return 0
		})
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func Categories(products []domain.Product) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Pager exposes a growing prefix of a filtered list.
type Pager struct {
	items []domain.Product
	step  int
	delay time.Duration
	shown int
}

func NewPager(items []domain.Product, initial, step int, delay time.Duration) *Pager {
	if initial < 1 {
		initial = 12
	}
	if step < 1 {
		step = 8
	}
	return &Pager{items: items, step: step, delay: delay, shown: min(initial, len(items))}
}

func (p *Pager) Visible() []domain.Product {
	return p.items[:p.shown]
}

func (p *Pager) Exhausted() bool {
	return p.shown >= len(p.items)
}

func (p *Pager) Total() int {
	return len(p.items)
}

// Skip widens the window by n increments without waiting.
func (p *Pager) Skip(n int) {
	for i := 0; i < n && !p.Exhausted(); i++ {
		p.shown = min(p.shown+p.step, len(p.items))
	}
}

// LoadMore waits the configured delay and then widens the window by one
// increment. It returns ctx.Err() if cancelled first, leaving the window as is.
func (p *Pager) LoadMore(ctx context.Context) error {
	if p.Exhausted() {
		return nil
	}
	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	p.Skip(1)
	return nil
}
