package services

import (
	"errors"
	"math"
	"strings"

	"leder/internal/domain"
	"leder/internal/repos"
	"leder/internal/validate"

	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
	// maxPage keeps (page-1)*limit inside int32 for any allowed limit.
	maxPage = math.MaxInt32 / maxPageSize
)

// ProductQuery is the raw catalog query as the HTTP layer received it.
type ProductQuery struct {
	Categories []string
	Colors     []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Q          string
	Sort       string // price | title | createdAt | price-asc | price-desc | title-asc | newest
	Order      string // asc | desc
	Status     string // admin only
	Page       int
	Limit      int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ProductPage struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

// Query is the storefront listing: active products only.
func (s *CatalogService) Query(q ProductQuery) (ProductPage, error) {
	q.Status = domain.StatusActive
	return s.query(q)
}

// AdminQuery lists products in any status unless one is asked for.
func (s *CatalogService) AdminQuery(q ProductQuery) (ProductPage, error) {
	if q.Status != "" && q.Status != domain.StatusActive && q.Status != domain.StatusDraft {
		q.Status = ""
	}
	return s.query(q)
}

func sortKey(sort, order string) (string, bool) {
	switch sort {
	case "price-asc":
		return "price", false
	case "price-desc":
		return "price", true
	case "title-asc":
		return "title", false
	case "title-desc":
		return "title", true
	case "price", "title":
		return sort, order == "desc"
	default:
		return "newest", true
	}
}

func (s *CatalogService) query(q ProductQuery) (ProductPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	sort, desc := sortKey(q.Sort, q.Order)

	list, total, err := s.Prods.Query(repos.ProductFilter{
		Categories: q.Categories,
		Colors:     q.Colors,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		Q:          validate.Q(q.Q),
		Status:     q.Status,
		Sort:       sort,
		Desc:       desc,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{
		Products: list,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// GetPublic resolves an id or slug to an active product.
func (s *CatalogService) GetPublic(idOrSlug string) (*domain.Product, error) {
	p, err := s.Prods.FindActive(strings.TrimSpace(idOrSlug))
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// Get returns a product in any status.
func (s *CatalogService) Get(id string) (*domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *CatalogService) checkProduct(p *domain.Product) error {
	var ok bool
	if p.Title, ok = validate.Text(p.Title, 200); !ok {
		return invalid(ErrInvalidInput, "Title is required")
	}
	p.TitleEn = strings.TrimSpace(p.TitleEn)
	p.TitlePl = strings.TrimSpace(p.TitlePl)
	if p.Price.IsNegative() {
		return invalid(ErrInvalidInput, "Price cannot be negative")
	}
	if p.CompareAtPrice.Valid && p.CompareAtPrice.Decimal.IsNegative() {
		return invalid(ErrInvalidInput, "Compare-at price cannot be negative")
	}
	if !domain.Contains(domain.ProductCategories, p.Category) {
		return invalid(ErrInvalidInput, "Unknown category")
	}
	if p.Status == "" {
		p.Status = domain.StatusActive
	}
	if p.Status != domain.StatusActive && p.Status != domain.StatusDraft {
		return invalid(ErrInvalidInput, "Unknown status")
	}
	for _, l := range p.Labels {
		if !domain.Contains(domain.ProductLabels, l) {
			return invalid(ErrInvalidInput, "Unknown label %q", l)
		}
	}
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if !validate.Slug(p.Slug) {
		return invalid(ErrInvalidInput, "Invalid slug")
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.Color, ok = validate.Text(v.Color, 60); !ok {
			return invalid(ErrInvalidInput, "Variant color is required")
		}
		if v.ColorHex != "" && !validate.Color(v.ColorHex) {
			return invalid(ErrInvalidInput, "Invalid color code")
		}
		if v.Stock < 0 {
			return invalid(ErrInvalidInput, "Stock cannot be negative")
		}
	}
	return nil
}

func (s *CatalogService) Create(p *domain.Product) error {
	p.ID = ""
	if err := s.checkProduct(p); err != nil {
		return err
	}
	if err := s.Prods.Create(p); err != nil {
		switch {
		case errors.Is(err, repos.ErrConflict):
			return ErrDuplicateSlug
		case errors.Is(err, repos.ErrForeignVariant):
			return invalid(ErrInvalidInput, "Unknown variant for this product")
		}
		return err
	}
	return nil
}

func (s *CatalogService) Update(p *domain.Product) error {
	if err := s.checkProduct(p); err != nil {
		return err
	}
	switch err := s.Prods.Update(p); {
	case errors.Is(err, repos.ErrConflict):
		return ErrDuplicateSlug
	case errors.Is(err, repos.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repos.ErrForeignVariant):
		return invalid(ErrInvalidInput, "Unknown variant for this product")
	default:
		return err
	}
}

// Delete removes a product and its variants. Orders and reviews keep their copies.
func (s *CatalogService) Delete(id string) error {
	err := s.Prods.Delete(id)
	if errors.Is(err, repos.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) checkCategory(c *domain.Category) error {
	var ok bool
	if c.Name, ok = validate.Text(c.Name, 100); !ok {
		return invalid(ErrInvalidInput, "Name is required")
	}
	c.Slug = strings.TrimSpace(c.Slug)
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if !validate.Slug(c.Slug) {
		return invalid(ErrInvalidInput, "Invalid slug")
	}
	c.Description = strings.TrimSpace(c.Description)
	c.Image = strings.TrimSpace(c.Image)
	return nil
}

func (s *CatalogService) CreateCategory(c *domain.Category) error {
	c.ID = ""
	if err := s.checkCategory(c); err != nil {
		return err
	}
	err := s.Cats.Create(c)
	if errors.Is(err, repos.ErrConflict) {
		return ErrDuplicateSlug
	}
	return err
}

func (s *CatalogService) UpdateCategory(c *domain.Category) error {
	if err := s.checkCategory(c); err != nil {
		return err
	}
	switch err := s.Cats.Update(c); {
	case errors.Is(err, repos.ErrConflict):
		return ErrDuplicateSlug
	case errors.Is(err, repos.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}

func (s *CatalogService) DeleteCategory(id string) error {
	err := s.Cats.Delete(id)
	if errors.Is(err, repos.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "h", 'ґ': "g", 'д': "d", 'е': "e", 'є': "ye",
	'ж': "zh", 'з': "z", 'и': "y", 'і': "i", 'ї': "yi", 'й': "y", 'к': "k", 'л': "l",
	'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch", 'ь': "", 'ю': "yu",
	'я': "ya", 'ы': "y", 'э': "e", 'ё': "yo", 'ъ': "",
}

// Slugify lower-cases s, transliterates Cyrillic to Latin and joins the
// remaining [a-z0-9] runs with single dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if t, ok := translit[r]; ok {
			if t == "" {
				continue
			}
			b.WriteString(t)
			dash = false
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
