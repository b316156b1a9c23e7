package repos

import (
	"leder/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SeedCatalog inserts the demo categories and products when the catalog is empty.
// It reports whether anything was written.
func SeedCatalog(db *sqlx.DB) (bool, error) {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	cats := NewCategoryRepo(db)
	for _, c := range demoCategories() {
		c := c
		if err := cats.Create(&c); err != nil {
			return false, err
		}
	}
	products := NewProductRepo(db)
	for _, p := range demoProducts() {
		p := p
		if err := products.Create(&p); err != nil {
			return false, err
		}
	}
	return true, nil
}

func demoCategories() []domain.Category {
	return []domain.Category{
		{Name: "Сумки", Slug: "bags", Description: "Шкіряні сумки ручної роботи",
			Image: "https://images.unsplash.com/photo-1548036328-c9fa89d128fa?w=600"},
		{Name: "Гаманці", Slug: "wallets", Description: "Компактні гаманці з натуральної шкіри",
			Image: "https://images.unsplash.com/photo-1627123424574-724758594e93?w=600"},
		{Name: "Ремені", Slug: "belts", Description: "Класичні шкіряні ремені",
			Image: "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=600"},
		{Name: "Аксесуари", Slug: "accessories", Description: "Шкіряні аксесуари та подарунки",
			Image: "https://images.unsplash.com/photo-1611923134239-b9be5816e23c?w=600"},
	}
}

func variant(color, hex, size string, stock int, mod int64, img string) domain.Variant {
	return domain.Variant{
		Color: color, ColorHex: hex, Size: size, Stock: stock,
		PriceModifier: decimal.NewFromInt(mod),
		Images:        []string{img},
	}
}

func demoProducts() []domain.Product {
	const img = "https://images.unsplash.com/"
	return []domain.Product{
		{
			Title: `Шкіряна сумка "Classic"`, TitleEn: `Leather Bag "Classic"`, TitlePl: `Skórzana torba "Classic"`,
			Slug: "leather-bag-classic", Description: "Елегантна сумка з натуральної шкіри ручної роботи.",
			Price: decimal.NewFromInt(4500), CompareAtPrice: decimal.NewNullDecimal(decimal.NewFromInt(5200)),
			Category: "bags", Labels: []string{"sale", "bestseller"}, Status: domain.StatusActive,
			Variants: []domain.Variant{
				variant("Коричневий", "#8B4513", "", 5, 0, img+"photo-1548036328-c9fa89d128fa?w=800"),
				variant("Чорний", "#1A1A1A", "", 3, 0, img+"photo-1584917865442-de89df76afd3?w=800"),
			},
		},
		{
			Title: `Гаманець "Slim"`, TitleEn: `Wallet "Slim"`, TitlePl: `Portfel "Slim"`,
			Slug: "wallet-slim", Description: "Компактний гаманець з відділеннями для карток та готівки.",
			Price: decimal.NewFromInt(1800), Category: "wallets", Labels: []string{"new"}, Status: domain.StatusActive,
			Variants: []domain.Variant{
				variant("Коньяк", "#D4A574", "", 10, 0, img+"photo-1627123424574-724758594e93?w=800"),
				variant("Тан", "#D2B48C", "", 7, 0, img+"photo-1606503825008-909a67e63c3d?w=800"),
			},
		},
		{
			Title: `Ремінь "Heritage"`, TitleEn: `Belt "Heritage"`, TitlePl: `Pasek "Heritage"`,
			Slug: "belt-heritage", Description: "Класичний шкіряний ремінь з латунною пряжкою.",
			Price: decimal.NewFromInt(1200), Category: "belts", Status: domain.StatusActive,
			Variants: []domain.Variant{
				variant("Коричневий", "#8B4513", "M", 4, 0, img+"photo-1624222247344-550fb60583dc?w=800"),
				variant("Чорний", "#1A1A1A", "L", 5, 0, img+"photo-1553062407-98eeb64c6a62?w=800"),
			},
		},
		{
			Title: `Сумка "Messenger"`, TitleEn: `Bag "Messenger"`, TitlePl: `Torba "Messenger"`,
			Slug: "bag-messenger", Description: "Класична сумка-месенджер для ноутбука до 15 дюймів.",
			Price: decimal.NewFromInt(5800), Category: "bags", Labels: []string{"new"}, Status: domain.StatusActive,
			Variants: []domain.Variant{
				variant("Vintage Brown", "#6B3410", "", 2, 200, img+"photo-1553062407-98eeb64c6a62?w=800"),
			},
		},
		{
			Title: `Картхолдер "Minimal"`, TitleEn: `Card Holder "Minimal"`, TitlePl: `Etui na karty "Minimal"`,
			Slug: "cardholder-minimal", Description: "Мінімалістичний картхолдер на 6 карток.",
			Price: decimal.NewFromInt(650), Category: "accessories", Labels: []string{"bestseller"}, Status: domain.StatusActive,
			Variants: []domain.Variant{
				variant("Чорний", "#1A1A1A", "", 15, 0, img+"photo-1611923134239-b9be5816e23c?w=800"),
			},
		},
	}
}
