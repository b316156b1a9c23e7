package services

import (
	"context"
	"errors"
	"strings"

	"leder/internal/domain"
	"leder/internal/repos"
	"leder/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	orderNumberAttempts = 3
	maxOrderLines       = 100
)

// NumberSource hands out order number candidates.
type NumberSource interface {
	Next() string
}

type OrderLine struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// NewOrder is a checkout request. Client totals are informational only.
type NewOrder struct {
	Customer       domain.Customer
	Shipping       domain.Shipping
	Items          []OrderLine
	ShippingCost   decimal.Decimal
	PaymentMethod  string
	UserID         string
	ClientSubtotal *decimal.Decimal
	ClientTotal    *decimal.Decimal
}

type OrderService struct {
	DB      *sqlx.DB
	Prods   *repos.ProductRepo
	Inv     *repos.InventoryRepo
	Orders  *repos.OrderRepo
	Numbers NumberSource
}

func NewOrderService(db *sqlx.DB, prods *repos.ProductRepo, inv *repos.InventoryRepo, orders *repos.OrderRepo, numbers NumberSource) *OrderService {
	return &OrderService{DB: db, Prods: prods, Inv: inv, Orders: orders, Numbers: numbers}
}

func validateOrder(in *NewOrder) error {
	if len(in.Items) == 0 {
		return invalid(ErrInvalidOrder, "Order must contain at least one item")
	}
	if len(in.Items) > maxOrderLines {
		return invalid(ErrInvalidOrder, "Order may contain at most %d items", maxOrderLines)
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" || strings.TrimSpace(it.VariantID) == "" {
			return invalid(ErrInvalidOrder, "Each item needs a product and a variant")
		}
		if it.Quantity < 1 || it.Quantity > validate.MaxQty {
			return invalid(ErrInvalidOrder, "Quantity must be between 1 and %d", validate.MaxQty)
		}
	}
	c := &in.Customer
	var ok bool
	if c.FirstName, ok = validate.Name(c.FirstName); !ok {
		return invalid(ErrInvalidOrder, "First name is required")
	}
	if c.LastName, ok = validate.Name(c.LastName); !ok {
		return invalid(ErrInvalidOrder, "Last name is required")
	}
	if c.Email, ok = validate.Email(c.Email); !ok {
		return invalid(ErrInvalidOrder, "Invalid email")
	}
	if c.Phone, ok = validate.Phone(c.Phone); !ok {
		return invalid(ErrInvalidOrder, "Invalid phone")
	}
	sh := &in.Shipping
	sh.City, sh.CityRef = strings.TrimSpace(sh.City), strings.TrimSpace(sh.CityRef)
	sh.Warehouse, sh.WarehouseRef = strings.TrimSpace(sh.Warehouse), strings.TrimSpace(sh.WarehouseRef)
	if sh.City == "" || sh.CityRef == "" || sh.Warehouse == "" || sh.WarehouseRef == "" {
		return invalid(ErrInvalidOrder, "Shipping city and warehouse are required")
	}
	if sh.Method == "" {
		sh.Method = domain.ShippingMethods[0]
	}
	if !domain.Contains(domain.ShippingMethods, sh.Method) {
		return invalid(ErrInvalidOrder, "Unknown shipping method")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = domain.PaymentCOD
	}
	if !domain.Contains(domain.PaymentMethods, in.PaymentMethod) {
		return invalid(ErrInvalidOrder, "Unknown payment method")
	}
	if in.ShippingCost.IsNegative() {
		return invalid(ErrInvalidOrder, "Shipping cost cannot be negative")
	}
	return nil
}

type reservation struct {
	productID, variantID string
	title                string
	qty                  int
}

// Create validates, prices and stores an order while reserving stock. Either
// the order exists and every line's stock was decremented, or nothing changed.
func (s *OrderService) Create(ctx context.Context, in NewOrder) (*domain.Order, error) {
	if err := validateOrder(&in); err != nil {
		return nil, err
	}

	o := &domain.Order{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Customer:      in.Customer,
		Shipping:      in.Shipping,
		ShippingCost:  in.ShippingCost,
		Status:        domain.OrderNew,
		PaymentMethod: in.PaymentMethod,
	}

	err := repos.WithTxContext(ctx, s.DB, func(tx *sqlx.Tx) error {
		products := map[string]*domain.Product{}
		var holds []*reservation
		byVariant := map[string]*reservation{}

		// check every line before touching anything
		for _, line := range in.Items {
			p, ok := products[line.ProductID]
			if !ok {
				got, err := s.Prods.GetTx(tx, line.ProductID)
				if errors.Is(err, repos.ErrNotFound) || (err == nil && got.Status != domain.StatusActive) {
					return &MissingProductError{ProductID: line.ProductID}
				}
				if err != nil {
					return err
				}
				p = got
				products[line.ProductID] = p
			}
			v, ok := p.Variant(line.VariantID)
			if !ok {
				return &StockError{ProductID: p.ID, VariantID: line.VariantID, Title: p.Title}
			}
			key := p.ID + "/" + v.ID
			h, seen := byVariant[key]
			if !seen {
				h = &reservation{productID: p.ID, variantID: v.ID, title: p.Title}
				byVariant[key] = h
				holds = append(holds, h)
			}
			h.qty += line.Quantity
			if v.Stock < h.qty {
				return &StockError{ProductID: p.ID, VariantID: v.ID, Title: p.Title}
			}

			o.Items = append(o.Items, domain.OrderItem{
				ProductID: p.ID,
				VariantID: v.ID,
				Title:     p.Title,
				Color:     v.Color,
				Size:      v.Size,
				Quantity:  line.Quantity,
				Price:     v.UnitPrice(p),
				Image:     v.Image(),
			})
		}

		o.Subtotal = decimal.Zero
		for _, it := range o.Items {
			o.Subtotal = o.Subtotal.Add(it.LineTotal())
		}
		o.TotalPrice = o.Subtotal.Add(o.ShippingCost)

		inserted := false
		for attempt := 0; attempt < orderNumberAttempts; attempt++ {
			o.OrderNumber = s.Numbers.Next()
			err := s.Orders.Insert(tx, o)
			if errors.Is(err, repos.ErrConflict) {
				continue
			}
			if err != nil {
				return err
			}
			inserted = true
			break
		}
		if !inserted {
			return ErrOrderNumberCollision
		}

		for _, h := range holds {
			err := s.Inv.Decrement(tx, h.productID, h.variantID, h.qty)
			if errors.Is(err, repos.ErrNoStock) {
				return &StockError{ProductID: h.productID, VariantID: h.variantID, Title: h.title}
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// TotalsMismatch reports whether the client-sent totals disagree with the stored order.
func TotalsMismatch(in NewOrder, o *domain.Order) bool {
	if in.ClientSubtotal != nil && !in.ClientSubtotal.Equal(o.Subtotal) {
		return true
	}
	return in.ClientTotal != nil && !in.ClientTotal.Equal(o.TotalPrice)
}

func (s *OrderService) Get(id string) (*domain.Order, error) {
	o, err := s.Orders.Get(id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrNotFound
	}
	return o, err
}

// CanView reports whether u may read o: admins always, customers when the
// order carries their account id or e-mail.
func CanView(u *domain.User, o *domain.Order) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return (o.UserID != "" && o.UserID == u.ID) || strings.EqualFold(o.Customer.Email, u.Email)
}

func (s *OrderService) List(f repos.OrderFilter) ([]domain.Order, error) {
	if f.Status != "" && !domain.Contains(domain.OrderStatuses, f.Status) {
		return nil, invalid(ErrInvalidInput, "Unknown order status")
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	return s.Orders.List(f)
}

// UpdateStatus moves an order through its lifecycle and returns the new state.
func (s *OrderService) UpdateStatus(id, status string) (*domain.Order, error) {
	if !domain.Contains(domain.OrderStatuses, status) {
		return nil, invalid(ErrInvalidInput, "Unknown order status")
	}
	if err := s.Orders.UpdateStatus(id, status); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(id)
}
