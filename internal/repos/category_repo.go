package repos

import (
	"leder/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, name, slug, description, image, created_at, updated_at`

func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.Select(&out, `SELECT `+categoryCols+` FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Get(id string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.Get(&c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CategoryRepo) Create(c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now()
	_, err := r.db.NamedExec(`
		INSERT INTO categories(id, name, slug, description, image, created_at)
		VALUES(:id, :name, :slug, :description, :image, :created_at)
	`, c)
	return conflict(err)
}

func (r *CategoryRepo) Update(c *domain.Category) error {
	c.UpdatedAt = now()
	res, err := r.db.NamedExec(`
		UPDATE categories
		SET name = :name, slug = :slug, description = :description, image = :image, updated_at = :updated_at
		WHERE id = :id
	`, c)
	if err != nil {
		return conflict(err)
	}
	return affected(res)
}

func (r *CategoryRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}
