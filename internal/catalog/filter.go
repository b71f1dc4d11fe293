package catalog

import "strings"

// CategoryAll disables category filtering.
const CategoryAll = "all"

type Criteria struct {
	SearchText string  `json:"q"`
	Category   string  `json:"category"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}

type PriceBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultCriteria matches every product inside b.
func DefaultCriteria(b PriceBounds) Criteria {
	return Criteria{
		Category: CategoryAll,
		MinPrice: b.Min,
		MaxPrice: b.Max,
	}
}

// Match reports whether p satisfies every clause of c.
func (c Criteria) Match(p Product) bool {
	return c.matchTitle(strings.ToLower(p.Title)) &&
		(c.Category == CategoryAll || p.Category == c.Category) &&
		c.MinPrice <= p.Price && p.Price <= c.MaxPrice
}

func (c Criteria) matchTitle(lowerTitle string) bool {
	if c.SearchText == "" {
		return true
	}
	return strings.Contains(lowerTitle, strings.ToLower(c.SearchText))
}

// Filter returns copies of the products matching c, in their original order.
func Filter(ps []Product, c Criteria) []Product {
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		if c.Match(p) {
			out = append(out, p.clone())
		}
	}
	return out
}

func distinctCategories(ps []Product) []string {
	seen := make(map[string]struct{}, len(ps))
	out := make([]string, 0, 8)
	for _, p := range ps {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func boundsOf(ps []Product) PriceBounds {
	var b PriceBounds
	for _, p := range ps {
		if p.Price > b.Max {
			b.Max = p.Price
		}
	}
	return b
}
