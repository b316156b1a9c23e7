package repos

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNoStock is returned by Decrement when the variant has fewer units than requested.
var ErrNoStock = errors.New("insufficient stock")

// InventoryRepo owns variant stock levels.
type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// LowStockRow is one variant that is nearly sold out.
type LowStockRow struct {
	ProductID string `db:"product_id" json:"productId"`
	VariantID string `db:"variant_id" json:"variantId"`
	Title     string `db:"title" json:"title"`
	Color     string `db:"color" json:"color"`
	Size      string `db:"size" json:"size,omitempty"`
	Stock     int    `db:"stock" json:"stock"`
}

// Stock returns the current stock of a variant of a product.
func (r *InventoryRepo) Stock(productID, variantID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `
		SELECT stock FROM product_variants
		WHERE id = ? AND product_id = ?
	`, variantID, productID)
	if err != nil {
		return 0, notFound(err)
	}
	return qty, nil
}

// Decrement subtracts "by" units only if enough stock exists. The check and the
// write are one statement, so two buyers can never both take the last unit.
func (r *InventoryRepo) Decrement(tx *sqlx.Tx, productID, variantID string, by int) error {
	if by < 1 {
		return fmt.Errorf("decrement %s/%s by %d: quantity must be positive", productID, variantID, by)
	}
	res, err := tx.Exec(`
		UPDATE product_variants
		SET stock = stock - ?
		WHERE id = ? AND product_id = ? AND stock >= ?
	`, by, variantID, productID, by)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoStock
	}
	return nil
}

// SetStock overwrites the stock of a variant.
func (r *InventoryRepo) SetStock(productID, variantID string, qty int) error {
	res, err := r.db.Exec(`
		UPDATE product_variants SET stock = ?
		WHERE id = ? AND product_id = ?
	`, qty, variantID, productID)
	if err != nil {
		return err
	}
	return affected(res)
}

// LowStock lists variants of active products with 0 < stock <= threshold.
func (r *InventoryRepo) LowStock(threshold int) ([]LowStockRow, error) {
	rows := []LowStockRow{}
	err := r.db.Select(&rows, `
		SELECT v.product_id, v.id AS variant_id, p.title, v.color, v.size, v.stock
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.status = 'active' AND v.stock > 0 AND v.stock <= ?
		ORDER BY v.stock, p.title
	`, threshold)
	return rows, err
}
