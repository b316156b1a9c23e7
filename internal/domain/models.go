package domain

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	StatusActive = "active"
	StatusDraft  = "draft"
)

// Categories and labels are fixed sets.
var (
	ProductCategories = []string{"bags", "wallets", "belts", "accessories"}
	ProductLabels     = []string{"new", "sale", "bestseller"}
)

type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description,omitempty"`
	Image       string `db:"image" json:"image,omitempty"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
	UpdatedAt   string `db:"updated_at" json:"updatedAt,omitempty"`
}

type Product struct {
	ID             string              `db:"id" json:"id"`
	Title          string              `db:"title" json:"title"`
	TitleEn        string              `db:"title_en" json:"titleEn,omitempty"`
	TitlePl        string              `db:"title_pl" json:"titlePl,omitempty"`
	Slug           string              `db:"slug" json:"slug"`
	Description    string              `db:"description" json:"description"`
	Price          decimal.Decimal     `db:"price" json:"price"`
	CompareAtPrice decimal.NullDecimal `db:"compare_at_price" json:"compareAtPrice"`
	Category       string              `db:"category" json:"category"`
	LabelsJSON     string              `db:"labels_json" json:"-"`
	Status         string              `db:"status" json:"status"`
	CreatedAt      string              `db:"created_at" json:"createdAt"`
	UpdatedAt      string              `db:"updated_at" json:"updatedAt,omitempty"`

	Labels   []string  `db:"-" json:"labels"`
	Variants []Variant `db:"-" json:"variants"`
}

// Variant is embedded in its product; it has no identity outside it.
type Variant struct {
	ID            string          `db:"id" json:"id"`
	ProductID     string          `db:"product_id" json:"-"`
	Color         string          `db:"color" json:"color"`
	ColorHex      string          `db:"color_hex" json:"colorHex"`
	Size          string          `db:"size" json:"size,omitempty"`
	Stock         int             `db:"stock" json:"stock"`
	PriceModifier decimal.Decimal `db:"price_modifier" json:"priceModifier"`
	ImagesJSON    string          `db:"images_json" json:"-"`

	Images []string `db:"-" json:"images"`
}

// Variant looks up a variant by id.
func (p *Product) Variant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// UnitPrice is the product base price plus the variant modifier.
func (v Variant) UnitPrice(p *Product) decimal.Decimal {
	return p.Price.Add(v.PriceModifier)
}

// Image returns the first image of the variant, if any.
func (v Variant) Image() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0]
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

// Contains reports whether s is one of set.
func Contains(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}
