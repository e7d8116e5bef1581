package services

import (
	"context"
	"errors"
	"strings"

	applog "ektagames/internal/log"
	"ektagames/internal/domain"
	"ektagames/internal/metrics"
)

const (
	MinPreferencesLen  = 10
	DefaultRecommended = 3
	MaxRecommended     = 10

	MsgRecommendationsUnavailable = "Sorry, we couldn't generate recommendations at this time. Please try again later."
)

var (
	ErrPreferencesTooShort        = errors.New("please describe your preferences in at least 10 characters")
	ErrRecommendationsUnavailable = errors.New(MsgRecommendationsUnavailable)
)

// Generator produces game recommendations from free text.
type Generator interface {
	Generate(ctx context.Context, preferences string, count int) ([]domain.Recommendation, error)
}

type RecommendService struct {
	Gen     Generator
	Metrics *metrics.Metrics
}

// Recommend never retries; any generator failure becomes
// ErrRecommendationsUnavailable.
func (s *RecommendService) Recommend(ctx context.Context, preferences string, count int) ([]domain.Recommendation, error) {
	preferences = strings.TrimSpace(preferences)
	if len([]rune(preferences)) < MinPreferencesLen {
		s.Metrics.Recommendation("invalid")
		return nil, ErrPreferencesTooShort
	}
	switch {
	case count == 0:
		count = DefaultRecommended
	case count < 1:
		count = 1
	case count > MaxRecommended:
		count = MaxRecommended
	}

	if s.Gen == nil {
		s.Metrics.Recommendation("unavailable")
		return nil, ErrRecommendationsUnavailable
	}
	recs, err := s.Gen.Generate(ctx, preferences, count)
	if err != nil {
		applog.BgWarn("recommend.generate", err, map[string]any{"count": count})
		s.Metrics.Recommendation("unavailable")
		return nil, ErrRecommendationsUnavailable
	}
	if len(recs) > count {
		recs = recs[:count]
	}
	s.Metrics.Recommendation("ok")
	return recs, nil
}
