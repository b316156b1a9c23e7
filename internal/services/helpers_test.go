package services_test

import (
	"fmt"
	"testing"

	"leder/internal/domain"
	"leder/internal/repos"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// addProduct stores an active bag with one variant per stock value.
func addProduct(t *testing.T, db *sqlx.DB, slug string, price int64, stocks ...int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Title:    "Сумка " + slug,
		Slug:     slug,
		Price:    decimal.NewFromInt(price),
		Category: "bags",
		Status:   domain.StatusActive,
	}
	for i, s := range stocks {
		p.Variants = append(p.Variants, domain.Variant{
			Color:    fmt.Sprintf("Колір %d", i+1),
			ColorHex: "#8B4513",
			Stock:    s,
			Images:   []string{fmt.Sprintf("https://img.example/%s-%d.jpg", slug, i)},
		})
	}
	require.NoError(t, repos.NewProductRepo(db).Create(p))
	return p
}

func addUser(t *testing.T, db *sqlx.DB, email, first, last, role string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Hash: "$2a$04$notarealhash", FirstName: first, LastName: last, Role: role}
	require.NoError(t, repos.NewUserRepo(db).Create(u))
	return u
}

func stockOf(t *testing.T, db *sqlx.DB, p *domain.Product, variant int) int {
	t.Helper()
	n, err := repos.NewInventoryRepo(db).Stock(p.ID, p.Variants[variant].ID)
	require.NoError(t, err)
	return n
}
