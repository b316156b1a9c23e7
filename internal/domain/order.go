package domain

import "github.com/shopspring/decimal"

const (
	OrderNew       = "new"
	OrderReceived  = "received"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"

	PaymentCOD    = "cod"
	PaymentOnline = "online"
)

var (
	OrderStatuses   = []string{OrderNew, OrderReceived, OrderShipped, OrderDelivered, OrderCancelled}
	PaymentMethods  = []string{PaymentCOD, PaymentOnline}
	ShippingMethods = []string{"nova_poshta", "ukrposhta"}
)

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Shipping struct {
	City         string `json:"city"`
	CityRef      string `json:"cityRef"`
	Warehouse    string `json:"warehouse"`
	WarehouseRef string `json:"warehouseRef"`
	Method       string `json:"method"`
}

// OrderItem is a copy of the product as it was sold. It is never
// re-read from the catalog, so later product edits do not change it.
type OrderItem struct {
	ProductID string          `db:"product_id" json:"productId"`
	VariantID string          `db:"variant_id" json:"variantId"`
	Title     string          `db:"title" json:"title"`
	Color     string          `db:"color" json:"color"`
	Size      string          `db:"size" json:"size,omitempty"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Image     string          `db:"image" json:"image,omitempty"`
}

// LineTotal is price times quantity.
func (it OrderItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	UserID        string          `json:"userId,omitempty"`
	Customer      Customer        `json:"customer"`
	Shipping      Shipping        `json:"shipping"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingCost  decimal.Decimal `json:"shippingCost"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentID     string          `json:"paymentId,omitempty"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}
