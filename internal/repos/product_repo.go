package repos

import (
	"encoding/json"
	"fmt"
	"strings"

	"leder/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// ProductFilter is a storefront or admin catalog query. Empty fields do not filter.
type ProductFilter struct {
	Categories []string
	Colors     []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Q          string
	Status     string
	Sort       string // newest | price | title
	Desc       bool
	Limit      int
	Offset     int
}

const productCols = `p.id, p.title, p.title_en, p.title_pl, p.slug, p.description, p.price,
    p.compare_at_price, p.category, p.labels_json, p.status, p.created_at, p.updated_at`

const variantCols = `id, product_id, color, color_hex, size, stock, price_modifier, images_json`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func orderBy(f ProductFilter) string {
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	switch f.Sort {
	case "price":
		return "p.price " + dir + ", p.rowid " + dir
	case "title":
		return "p.title " + dir + ", p.rowid " + dir
	default:
		return "p.created_at DESC, p.rowid DESC"
	}
}

// Query returns one page of matching products and the total match count.
func (r *ProductRepo) Query(f ProductFilter) ([]domain.Product, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Status != "" {
		where = append(where, "p.status = ?")
		args = append(args, f.Status)
	}
	if len(f.Categories) > 0 {
		where = append(where, "p.category IN (?)")
		args = append(args, f.Categories)
	}
	if len(f.Colors) > 0 {
		// SQLite LOWER folds ASCII only, so names are also matched as given.
		hexes := make([]string, len(f.Colors))
		names := make([]string, len(f.Colors))
		for i, c := range f.Colors {
			names[i] = strings.TrimSpace(c)
			hexes[i] = strings.ToLower(strings.TrimPrefix(names[i], "#"))
		}
		where = append(where, `EXISTS (SELECT 1 FROM product_variants v
		    WHERE v.product_id = p.id AND (LOWER(LTRIM(v.color_hex, '#')) IN (?) OR LOWER(v.color) IN (?) OR v.color IN (?)))`)
		args = append(args, hexes, hexes, names)
	}
	if f.MinPrice != nil {
		where = append(where, "p.price >= ?")
		args = append(args, f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		where = append(where, "p.price <= ?")
		args = append(args, f.MaxPrice.InexactFloat64())
	}
	if q := strings.ToLower(strings.TrimSpace(f.Q)); q != "" {
		where = append(where, `p.search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
	}
	cond := strings.Join(where, " AND ")

	countSQL, countArgs, err := sqlx.In(`SELECT COUNT(*) FROM products p WHERE `+cond, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.Get(&total, r.db.Rebind(countSQL), countArgs...); err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs, err := sqlx.In(`SELECT `+productCols+` FROM products p WHERE `+cond+
		` ORDER BY `+orderBy(f)+` LIMIT ? OFFSET ?`, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	out := []domain.Product{}
	if err := r.db.Select(&out, r.db.Rebind(pageSQL), pageArgs...); err != nil {
		return nil, 0, err
	}
	if err := attachVariants(r.db, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ProductRepo) Get(id string) (*domain.Product, error) {
	return getProduct(r.db, `p.id = ?`, id)
}

// GetTx reads a product inside an order transaction.
func (r *ProductRepo) GetTx(tx *sqlx.Tx, id string) (*domain.Product, error) {
	return getProduct(tx, `p.id = ?`, id)
}

// FindActive resolves an id or slug to an active product.
func (r *ProductRepo) FindActive(idOrSlug string) (*domain.Product, error) {
	return getProduct(r.db, `(p.id = ? OR p.slug = ?) AND p.status = 'active'`, idOrSlug, idOrSlug)
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.Queryer
	Rebind(string) string
}

func getProduct(q queryer, cond string, args ...any) (*domain.Product, error) {
	var p domain.Product
	if err := sqlx.Get(q, &p, `SELECT `+productCols+` FROM products p WHERE `+cond+` LIMIT 1`, args...); err != nil {
		return nil, notFound(err)
	}
	list := []domain.Product{p}
	if err := attachVariants(q, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// attachVariants loads variants for all products in one query and decodes JSON columns.
func attachVariants(q queryer, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	var err error
	ids := make([]string, len(products))
	idx := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		idx[products[i].ID] = i
		if products[i].Labels, err = decodeList(products[i].LabelsJSON); err != nil {
			return fmt.Errorf("product %s labels: %w", products[i].ID, err)
		}
		products[i].Variants = []domain.Variant{}
	}
	query, args, err := sqlx.In(`SELECT `+variantCols+` FROM product_variants
		WHERE product_id IN (?) ORDER BY product_id, position`, ids)
	if err != nil {
		return err
	}
	var vs []domain.Variant
	if err := sqlx.Select(q, &vs, q.Rebind(query), args...); err != nil {
		return err
	}
	for _, v := range vs {
		if v.Images, err = decodeList(v.ImagesJSON); err != nil {
			return fmt.Errorf("variant %s images: %w", v.ID, err)
		}
		i := idx[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}
	return nil
}

func searchText(p *domain.Product) string {
	return strings.ToLower(strings.Join([]string{p.Title, p.TitleEn, p.TitlePl, p.Description}, " "))
}

// Create inserts a product and its variants. Slug collisions return ErrConflict.
func (r *ProductRepo) Create(p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now()
	p.LabelsJSON = encodeList(p.Labels)
	return WithTx(r.db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO products(id, title, title_en, title_pl, slug, description, search_text, price,
			  compare_at_price, category, labels_json, status, created_at)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)
		`, p.ID, p.Title, p.TitleEn, p.TitlePl, p.Slug, p.Description, searchText(p), p.Price,
			p.CompareAtPrice, p.Category, p.LabelsJSON, p.Status, p.CreatedAt)
		if err != nil {
			return conflict(err)
		}
		for i := range p.Variants {
			if err := upsertVariant(tx, p.ID, i, &p.Variants[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update rewrites a product. Variants keep their id (and so any stock history)
// when present in the new list; omitted variants are removed.
func (r *ProductRepo) Update(p *domain.Product) error {
	p.UpdatedAt = now()
	p.LabelsJSON = encodeList(p.Labels)
	return WithTx(r.db, func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`
			UPDATE products SET title = ?, title_en = ?, title_pl = ?, slug = ?, description = ?,
			  search_text = ?, price = ?, compare_at_price = ?, category = ?, labels_json = ?,
			  status = ?, updated_at = ?
			WHERE id = ?
		`, p.Title, p.TitleEn, p.TitlePl, p.Slug, p.Description, searchText(p), p.Price,
			p.CompareAtPrice, p.Category, p.LabelsJSON, p.Status, p.UpdatedAt, p.ID)
		if err != nil {
			return conflict(err)
		}
		if err := affected(res); err != nil {
			return err
		}
		keep := []string{}
		for i := range p.Variants {
			if err := upsertVariant(tx, p.ID, i, &p.Variants[i]); err != nil {
				return err
			}
			keep = append(keep, p.Variants[i].ID)
		}
		if len(keep) == 0 {
			_, err = tx.Exec(`DELETE FROM product_variants WHERE product_id = ?`, p.ID)
			return err
		}
		query, args, err := sqlx.In(`DELETE FROM product_variants WHERE product_id = ? AND id NOT IN (?)`, p.ID, keep)
		if err != nil {
			return err
		}
		_, err = tx.Exec(tx.Rebind(query), args...)
		return err
	})
}

// upsertVariant inserts a new variant or rewrites an existing one of the same
// product. Stock of an existing variant only moves through InventoryRepo, so
// v.Stock is reloaded from the row instead of written.
func upsertVariant(tx *sqlx.Tx, productID string, pos int, v *domain.Variant) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.ProductID = productID
	v.ImagesJSON = encodeList(v.Images)
	res, err := tx.Exec(`
		INSERT INTO product_variants(id, product_id, position, color, color_hex, size, stock, price_modifier, images_json)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
		  position = excluded.position, color = excluded.color, color_hex = excluded.color_hex,
		  size = excluded.size, price_modifier = excluded.price_modifier,
		  images_json = excluded.images_json
		WHERE product_variants.product_id = excluded.product_id
	`, v.ID, productID, pos, v.Color, v.ColorHex, v.Size, v.Stock, v.PriceModifier, v.ImagesJSON)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("variant %s: %w", v.ID, ErrForeignVariant)
	}
	return tx.Get(&v.Stock, `SELECT stock FROM product_variants WHERE id = ?`, v.ID)
}

func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// CountActive is used by the admin dashboard.
func (r *ProductRepo) CountActive() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products WHERE status = 'active'`)
	return n, err
}

func encodeList(xs []string) string {
	if xs == nil {
		xs = []string{}
	}
	b, _ := json.Marshal(xs)
	return string(b)
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
