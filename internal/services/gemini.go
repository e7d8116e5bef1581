package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"

	"ektagames/internal/domain"
)

const recommendPrompt = `You are an expert game recommendation system. Based on the user's game preferences, you will recommend games that the user might enjoy. The user has requested %d recommendations.

User Game Preferences: %s`

// GeminiGenerator calls the Generative Language generateContent endpoint
// with a JSON response schema.
type GeminiGenerator struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

func (g *GeminiGenerator) requestBody(preferences string, count int) fiber.Map {
	str := fiber.Map{"type": "STRING"}
	return fiber.Map{
		"contents": []fiber.Map{{
			"role":  "user",
			"parts": []fiber.Map{{"text": fmt.Sprintf(recommendPrompt, count, preferences)}},
		}},
		"generationConfig": fiber.Map{
			"responseMimeType": "application/json",
			"responseSchema": fiber.Map{
				"type": "OBJECT",
				"properties": fiber.Map{
					"gameRecommendations": fiber.Map{
						"type": "ARRAY",
						"items": fiber.Map{
							"type": "OBJECT",
							"properties": fiber.Map{
								"gameName":        str,
								"gameDescription": str,
								"genre":           str,
							},
							"required": []string{"gameName", "gameDescription", "genre"},
						},
					},
				},
				"required": []string{"gameRecommendations"},
			},
		},
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, preferences string, count int) ([]domain.Recommendation, error) {
	if g.APIKey == "" {
		return nil, errors.New("gemini: no api key")
	}
	timeout := g.Timeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(dl))
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	url := strings.TrimRight(g.BaseURL, "/") + "/models/" + g.Model + ":generateContent"
	a := fiber.Post(url)
	a.Set("x-goog-api-key", g.APIKey)
	a.Timeout(timeout)
	a.JSON(g.requestBody(preferences, count))

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, multierr.Combine(errs...)
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("gemini: status %d: %s", code, gjson.GetBytes(body, "error.message").String())
	}
	return parseRecommendations(body)
}

func parseRecommendations(body []byte) ([]domain.Recommendation, error) {
	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text")
	if !text.Exists() {
		return nil, errors.New("gemini: empty candidate")
	}
	if !gjson.Valid(text.String()) {
		return nil, errors.New("gemini: candidate is not json")
	}
	list := gjson.Get(text.String(), "gameRecommendations")
	if !list.IsArray() {
		return nil, errors.New("gemini: missing gameRecommendations")
	}
	var out []domain.Recommendation
	for _, r := range list.Array() {
		rec := domain.Recommendation{
			GameName:        r.Get("gameName").String(),
			GameDescription: r.Get("gameDescription").String(),
			Genre:           r.Get("genre").String(),
		}
		if rec.GameName == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
