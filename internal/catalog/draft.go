package catalog

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	FieldTitle       = "title"
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldImage       = "image"
	FieldCategory    = "category"
)

// Draft holds raw form input for a product before it is validated.
// Price stays text until Payload parses it.
type Draft struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// DraftFrom pre-populates a draft for editing p.
func DraftFrom(p Product) Draft {
	return Draft{
		Title:       p.Title,
		Price:       decimal.NewFromFloat(p.Price).String(),
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
	}
}

// Payload validates every field and converts the draft into the request
// body. All failing fields are reported together.
func (d Draft) Payload() (Payload, error) {
	var fields []FieldError

	check := func(field string, desc string) {
		if desc != "" {
			fields = append(fields, FieldError{Field: field, Description: desc})
		}
	}

	price, priceDesc := parsePrice(d.Price)

	check(FieldTitle, required(d.Title, "title is required"))
	check(FieldPrice, priceDesc)
	check(FieldDescription, required(d.Description, "description is required"))
	check(FieldImage, required(d.Image, "image url is required"))
	check(FieldCategory, required(d.Category, "category is required"))

	if len(fields) > 0 {
		return Payload{}, &ValidationError{Fields: fields}
	}

	return Payload{
		Title:       strings.TrimSpace(d.Title),
		Price:       price.InexactFloat64(),
		Description: strings.TrimSpace(d.Description),
		Image:       strings.TrimSpace(d.Image),
		Category:    strings.TrimSpace(d.Category),
	}, nil
}

func required(v, desc string) string {
	if strings.TrimSpace(v) == "" {
		return desc
	}
	return ""
}

func parsePrice(raw string) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, "price is required"
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "price must be a number"
	}
	if d.IsNegative() {
		return decimal.Zero, "price cannot be negative"
	}
	// decimal has no upper bound; the wire format is a float64.
	if math.IsInf(d.InexactFloat64(), 0) {
		return decimal.Zero, "price is too large"
	}
	return d, ""
}
