package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"ektagames/internal/domain"
)

// Source is one upstream product feed. Its products get ids in
// (Offset, Offset+Span]; native ids above Span are dropped so ranges never
// overlap.
type Source struct {
	Name     string
	BaseURL  string
	ListPath string // e.g. "/products?limit=100"
	ItemPath string // fmt pattern taking the native id, e.g. "/products/%d"
	ListKey  string // gjson path of the array in the list body; "" = body is the array
	Offset   int
	Span     int

	// Static sources serve a literal list and never touch the network.
	Static []domain.Product
	// Fallback names a static source that stands in when this one fails or
	// comes back empty.
	Fallback string
}

// Owns reports whether id falls in this source's range.
func (s Source) Owns(id int) bool {
	return id > s.Offset && id <= s.Offset+s.Span
}

const (
	SourceDummyJSON     = "dummyjson"
	SourceFakeStore     = "fakestore"
	SourceBooks         = "books"
	SourceBooksFallback = "books-fallback"
)

// DefaultSources returns the upstreams in merge priority order.
func DefaultSources(dummyJSONURL, fakeStoreURL string) []Source {
	dummy := strings.TrimRight(dummyJSONURL, "/")
	fake := strings.TrimRight(fakeStoreURL, "/")
	return []Source{
		{Name: SourceDummyJSON, BaseURL: dummy, ListPath: "/products?limit=100", ItemPath: "/products/%d", ListKey: "products", Offset: 0, Span: 100},
		{Name: SourceFakeStore, BaseURL: fake, ListPath: "/products", ItemPath: "/products/%d", Offset: 200, Span: 100},
		{Name: SourceBooks, BaseURL: dummy, ListPath: "/products/category/books", ItemPath: "/products/%d", ListKey: "products", Offset: 300, Span: 100, Fallback: SourceBooksFallback},
		{Name: SourceBooksFallback, Offset: 400, Span: 100, Static: FallbackBooks()},
	}
}

// FallbackBooks is the literal book list used when the books feed is down.
func FallbackBooks() []domain.Product {
	book := func(id int, title, price, desc, brand string, rate float64, stock int) domain.Product {
		return domain.Product{
			ID:          id,
			Title:       title,
			Price:       decimal.RequireFromString(price),
			Description: desc,
			Category:    "books",
			Image:       "https://picsum.photos/seed/" + slug(title) + "/600/400",
			Rating:      domain.Rating{Rate: rate},
			Stock:       stock,
			Brand:       brand,
			Source:      SourceBooksFallback,
		}
	}
	return []domain.Product{
		book(401, "The Great Gatsby", "10.99", "A novel by F. Scott Fitzgerald.", "Penguin Classics", 4.5, 50),
		book(402, "To Kill a Mockingbird", "12.50", "A novel by Harper Lee.", "HarperCollins", 4.8, 30),
		book(403, "1984", "9.99", "A dystopian social science fiction novel by George Orwell.", "Signet Classics", 4.7, 60),
		book(404, "Pride and Prejudice", "8.99", "A romantic novel of manners by Jane Austen.", "Modern Library", 4.6, 45),
	}
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

// normalize maps one upstream record into a Product. Field names differ per
// feed: the image may only be in "thumbnail", and "rating" is either a flat
// number or a {rate, count} object.
func normalize(src Source, item gjson.Result) (domain.Product, bool) {
	native := int(item.Get("id").Int())
	if native <= 0 || native > src.Span {
		return domain.Product{}, false
	}

	price, err := decimal.NewFromString(item.Get("price").Raw)
	if err != nil {
		price = decimal.NewFromFloat(item.Get("price").Float())
	}

	p := domain.Product{
		ID:          native + src.Offset,
		Title:       item.Get("title").String(),
		Price:       price,
		Description: item.Get("description").String(),
		Category:    item.Get("category").String(),
		Image:       item.Get("thumbnail").String(),
		Brand:       item.Get("brand").String(),
		Stock:       int(item.Get("stock").Int()),
		Source:      src.Name,
	}
	if p.Image == "" {
		p.Image = item.Get("image").String()
	}

	rating := item.Get("rating")
	if rating.IsObject() {
		p.Rating = domain.Rating{Rate: rating.Get("rate").Float(), Count: int(rating.Get("count").Int())}
		if !item.Get("stock").Exists() {
			p.Stock = p.Rating.Count
		}
	} else {
		p.Rating = domain.Rating{Rate: rating.Float(), Count: int(item.Get("reviews.#").Int())}
	}
	return p, true
}
