package services

import (
	"errors"

	"leder/internal/domain"
	"leder/internal/repos"
	"leder/internal/validate"

	"github.com/shopspring/decimal"
)

// QuoteLine is one client cart line priced against the live catalog.
type QuoteLine struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId"`
	Title     string          `json:"title,omitempty"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Quote struct {
	Items    []QuoteLine     `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartService prices carts the browser keeps. It never writes.
type CartService struct {
	Prods *repos.ProductRepo
}

func NewCartService(prods *repos.ProductRepo) *CartService {
	return &CartService{Prods: prods}
}

func (s *CartService) Quote(lines []OrderLine) (Quote, error) {
	q := Quote{Items: []QuoteLine{}, Subtotal: decimal.Zero}
	cache := map[string]*domain.Product{}
	for _, l := range lines {
		ql := QuoteLine{ProductID: l.ProductID, VariantID: l.VariantID, Quantity: validate.Qty(l.Quantity)}
		p, ok := cache[l.ProductID]
		if !ok {
			got, err := s.Prods.FindActive(l.ProductID)
			if err != nil && !errors.Is(err, repos.ErrNotFound) {
				return Quote{}, err
			}
			p = got
			cache[l.ProductID] = p
		}
		if p != nil {
			ql.Title = p.Title
			if v, found := p.Variant(l.VariantID); found {
				ql.Color, ql.Size, ql.Image = v.Color, v.Size, v.Image()
				ql.Price = v.UnitPrice(p)
				ql.Stock = v.Stock
				ql.Available = v.Stock >= ql.Quantity
				ql.LineTotal = ql.Price.Mul(decimal.NewFromInt(int64(ql.Quantity)))
				q.Subtotal = q.Subtotal.Add(ql.LineTotal)
			}
		}
		q.Items = append(q.Items, ql)
	}
	return q, nil
}
