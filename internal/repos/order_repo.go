package repos

import (
	"encoding/json"
	"fmt"

	"leder/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// orderRow is the stored shape of an order header.
type orderRow struct {
	ID            string          `db:"id"`
	OrderNumber   string          `db:"order_number"`
	UserID        string          `db:"user_id"`
	CustomerJSON  string          `db:"customer_json"`
	ShippingJSON  string          `db:"shipping_json"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	ShippingCost  decimal.Decimal `db:"shipping_cost"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	Status        string          `db:"status"`
	PaymentMethod string          `db:"payment_method"`
	PaymentID     string          `db:"payment_id"`
	CreatedAt     string          `db:"created_at"`
	UpdatedAt     string          `db:"updated_at"`
}

const orderCols = `id, order_number, user_id, customer_json, shipping_json, subtotal, shipping_cost,
    total_price, status, payment_method, payment_id, created_at, updated_at`

func (row orderRow) order() (domain.Order, error) {
	o := domain.Order{
		ID:            row.ID,
		OrderNumber:   row.OrderNumber,
		UserID:        row.UserID,
		Subtotal:      row.Subtotal,
		ShippingCost:  row.ShippingCost,
		TotalPrice:    row.TotalPrice,
		Status:        row.Status,
		PaymentMethod: row.PaymentMethod,
		PaymentID:     row.PaymentID,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		Items:         []domain.OrderItem{},
	}
	if err := json.Unmarshal([]byte(row.CustomerJSON), &o.Customer); err != nil {
		return o, fmt.Errorf("order %s customer: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.ShippingJSON), &o.Shipping); err != nil {
		return o, fmt.Errorf("order %s shipping: %w", row.ID, err)
	}
	return o, nil
}

// OrderFilter narrows List. Zero values do not filter.
type OrderFilter struct {
	Email  string
	UserID string
	Status string
	Limit  int
}

// Insert writes the order header and its item snapshot. A duplicate order
// number returns ErrConflict; the caller may retry with a new number.
func (r *OrderRepo) Insert(tx *sqlx.Tx, o *domain.Order) error {
	o.CreatedAt = now()
	cust, err := json.Marshal(o.Customer)
	if err != nil {
		return err
	}
	ship, err := json.Marshal(o.Shipping)
	if err != nil {
		return err
	}
	// SQLite aborts only the failing statement, so the transaction survives a retry.
	_, err = tx.Exec(`
		INSERT INTO orders(id, order_number, user_id, customer_email, customer_json, shipping_json,
		  subtotal, shipping_cost, total_price, status, payment_method, payment_id, created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, o.ID, o.OrderNumber, o.UserID, o.Customer.Email, string(cust), string(ship),
		o.Subtotal, o.ShippingCost, o.TotalPrice, o.Status, o.PaymentMethod, o.PaymentID, o.CreatedAt)
	if err != nil {
		return conflict(err)
	}
	for i, it := range o.Items {
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id, position, product_id, variant_id, title, color, size, quantity, price, image)
			VALUES(?,?,?,?,?,?,?,?,?,?)
		`, o.ID, i, it.ProductID, it.VariantID, it.Title, it.Color, it.Size, it.Quantity, it.Price, it.Image); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) Get(id string) (*domain.Order, error) {
	var row orderRow
	if err := r.db.Get(&row, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	o, err := row.order()
	if err != nil {
		return nil, err
	}
	list := []domain.Order{o}
	if err := r.attachItems(list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List returns orders newest first.
func (r *OrderRepo) List(f OrderFilter) ([]domain.Order, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	q := `SELECT ` + orderCols + ` FROM orders WHERE 1=1`
	args := []any{}
	if f.Email != "" {
		q += ` AND LOWER(customer_email) = LOWER(?)`
		args = append(args, f.Email)
	}
	if f.UserID != "" {
		q += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	q += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, f.Limit)

	var rows []orderRow
	if err := r.db.Select(&rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Order, len(rows))
	for i, row := range rows {
		o, err := row.order()
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	if err := r.attachItems(out); err != nil {
		return nil, err
	}
	return out, nil
}

type itemRow struct {
	OrderID string `db:"order_id"`
	domain.OrderItem
}

func (r *OrderRepo) attachItems(orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	idx := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		idx[orders[i].ID] = i
	}
	query, args, err := sqlx.In(`
		SELECT order_id, product_id, variant_id, title, color, size, quantity, price, image
		FROM order_items WHERE order_id IN (?) ORDER BY order_id, position
	`, ids)
	if err != nil {
		return err
	}
	var items []itemRow
	if err := r.db.Select(&items, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, it := range items {
		i := idx[it.OrderID]
		orders[i].Items = append(orders[i].Items, it.OrderItem)
	}
	return nil
}

// UpdateStatus sets the lifecycle status. Items, number and totals are never touched.
func (r *OrderRepo) UpdateStatus(id, status string) error {
	res, err := r.db.Exec(`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return err
	}
	return affected(res)
}

// MarkPaid moves a new order to received with the payment reference. It reports
// whether a row changed; orders that are unknown or already advanced are left alone.
func (r *OrderRepo) MarkPaid(tx *sqlx.Tx, id, paymentID string) (bool, error) {
	res, err := tx.Exec(`
		UPDATE orders SET status = 'received', payment_id = ?, updated_at = ?
		WHERE id = ? AND status = 'new'
	`, paymentID, now(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// OrderStats aggregates the admin dashboard figures.
type OrderStats struct {
	Total   int
	New     int
	Revenue decimal.Decimal
}

func (r *OrderRepo) Stats() (OrderStats, error) {
	var s struct {
		Total   int     `db:"total"`
		New     int     `db:"new_count"`
		Revenue float64 `db:"revenue"`
	}
	err := r.db.Get(&s, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = 'new' THEN 1 ELSE 0 END), 0) AS new_count,
		       COALESCE(SUM(CASE WHEN status <> 'cancelled' THEN total_price ELSE 0 END), 0) AS revenue
		FROM orders
	`)
	if err != nil {
		return OrderStats{}, err
	}
	return OrderStats{Total: s.Total, New: s.New, Revenue: decimal.NewFromFloat(s.Revenue).Round(2)}, nil
}
