package domain

import "github.com/shopspring/decimal"

// Rating is the normalised review summary; upstreams that only send a flat
// score leave Count at zero.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
	Stock       int             `json:"stock"`
	Brand       string          `json:"brand,omitempty"`
	Source      string          `json:"source"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}

// Game is a featured title with its own detail page.
type Game struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription"`
	Genre           string   `json:"genre"`
	Platforms       []string `json:"platforms"`
}

type Recommendation struct {
	GameName        string `json:"gameName"`
	GameDescription string `json:"gameDescription"`
	Genre           string `json:"genre"`
}
