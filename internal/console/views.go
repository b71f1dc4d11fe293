package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"CatalogDesk/internal/catalog"
)

const allCategoriesLabel = "All Categories"

type productView struct {
	catalog.Product
	PriceDisplay string `json:"price_display"`
}

func newProductView(p catalog.Product) productView {
	return productView{Product: p, PriceDisplay: catalog.FormatPrice(p.Price)}
}

func newProductViews(ps []catalog.Product) []productView {
	out := make([]productView, len(ps))
	for i, p := range ps {
		out[i] = newProductView(p)
	}
	return out
}

type categoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func categoryOptions(cs []string) []categoryOption {
	out := make([]categoryOption, 0, len(cs)+1)
	out = append(out, categoryOption{Value: catalog.CategoryAll, Label: allCategoriesLabel})
	for _, c := range cs {
		out = append(out, categoryOption{Value: c, Label: catalog.DisplayCategory(c)})
	}
	return out
}

type listResponse struct {
	Products   []productView       `json:"products"`
	Count      int                 `json:"count"`
	Total      int                 `json:"total"`
	Categories []categoryOption    `json:"categories"`
	Criteria   catalog.Criteria    `json:"criteria"`
	Bounds     catalog.PriceBounds `json:"bounds"`
	LoadedAt   time.Time           `json:"loaded_at"`
	Stale      bool                `json:"stale"`
}

type reloadResponse struct {
	Products   int                 `json:"products"`
	Categories []categoryOption    `json:"categories"`
	Bounds     catalog.PriceBounds `json:"bounds"`
	LoadedAt   time.Time           `json:"loaded_at"`
}

type mutationResponse struct {
	Product    *productView `json:"product,omitempty"`
	NavigateTo string       `json:"navigate_to"`
}

// draftRequest accepts price as either a JSON string or a JSON number,
// since form libraries send both.
type draftRequest struct {
	Title       string    `json:"title"`
	Price       rawNumber `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
}

func (d draftRequest) draft() catalog.Draft {
	return catalog.Draft{
		Title:       d.Title,
		Price:       string(d.Price),
		Description: d.Description,
		Image:       d.Image,
		Category:    d.Category,
	}
}

type rawNumber string

func (n *rawNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = rawNumber(s)
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		*n = rawNumber(b)
	default:
		return errors.New("price must be a string or a number")
	}
	return nil
}
