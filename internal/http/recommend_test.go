package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ektagames/internal/domain"
	"ektagames/internal/http/handlers"
	"ektagames/internal/services"
)

type genFunc func(ctx context.Context, preferences string, count int) ([]domain.Recommendation, error)

func (f genFunc) Generate(ctx context.Context, preferences string, count int) ([]domain.Recommendation, error) {
	return f(ctx, preferences, count)
}

func TestRecommendations(t *testing.T) {
	var gotCount int
	gen := genFunc(func(_ context.Context, _ string, count int) ([]domain.Recommendation, error) {
		gotCount = count
		return []domain.Recommendation{
			{GameName: "Hades", Genre: "Roguelike"},
			{GameName: "Celeste", Genre: "Platformer"},
			{GameName: "Slay the Spire", Genre: "Deckbuilder"},
		}, nil
	})
	ta := newTestApp(t, roomyLimits(), handlers.Backends{Generator: gen})

	resp := ta.call(t, "POST", "/api/v1/recommendations", map[string]any{"preferences": "fast action with tight controls"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := decode[map[string][]domain.Recommendation](t, resp)["recommendations"]
	assert.Len(t, recs, services.DefaultRecommended)
	assert.Equal(t, services.DefaultRecommended, gotCount)

	resp = ta.call(t, "POST", "/api/v1/recommendations", map[string]any{"preferences": "rpg"}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errs := decode[map[string]map[string]string](t, resp)["errors"]
	assert.NotEmpty(t, errs["preferences"])
}

func TestRecommendations_Unavailable(t *testing.T) {
	for name, gen := range map[string]services.Generator{
		"no generator": nil,
		"generator fails": genFunc(func(context.Context, string, int) ([]domain.Recommendation, error) {
			return nil, errors.New("quota exceeded")
		}),
	} {
		t.Run(name, func(t *testing.T) {
			ta := newTestApp(t, roomyLimits(), handlers.Backends{Generator: gen})
			resp := ta.call(t, "POST", "/api/v1/recommendations", map[string]any{"preferences": "cozy farming games", "count": 2}, "")
			require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
			assert.Equal(t, services.MsgRecommendationsUnavailable, decode[map[string]string](t, resp)["error"])
		})
	}
}
