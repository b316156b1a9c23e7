package repos

import (
	"leder/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewCols = `id, product_id, user_id, rating, comment, status, parent_id, created_at, updated_at`

// Create inserts a review or reply. A second top-level review by the same
// user on the same product violates idx_reviews_one_per_user and returns ErrConflict.
func (r *ReviewRepo) Create(rv *domain.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	if rv.Status == "" {
		rv.Status = domain.ReviewNew
	}
	rv.CreatedAt = now()
	_, err := r.db.NamedExec(`
		INSERT INTO reviews(id, product_id, user_id, rating, comment, status, parent_id, created_at)
		VALUES(:id, :product_id, :user_id, :rating, :comment, :status, :parent_id, :created_at)
	`, rv)
	return conflict(err)
}

func (r *ReviewRepo) Get(id string) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.Get(&rv, `SELECT `+reviewCols+` FROM reviews WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	list := []domain.Review{rv}
	if err := r.attachLikes(list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// TopLevel lists reviews without a parent. Empty productID means every product.
func (r *ReviewRepo) TopLevel(productID string) ([]domain.Review, error) {
	q := `SELECT ` + reviewCols + ` FROM reviews WHERE parent_id IS NULL`
	args := []any{}
	if productID != "" {
		q += ` AND product_id = ?`
		args = append(args, productID)
	}
	q += ` ORDER BY created_at DESC, rowid DESC`
	out := []domain.Review{}
	if err := r.db.Select(&out, q, args...); err != nil {
		return nil, err
	}
	return out, r.attachLikes(out)
}

// Replies returns the children of the given reviews, oldest first.
func (r *ReviewRepo) Replies(parentIDs []string) ([]domain.Review, error) {
	out := []domain.Review{}
	if len(parentIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+reviewCols+` FROM reviews
		WHERE parent_id IN (?) ORDER BY created_at, rowid`, parentIDs)
	if err != nil {
		return nil, err
	}
	if err := r.db.Select(&out, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return out, r.attachLikes(out)
}

// Featured returns top-level reviews rated at least minRating, best first.
func (r *ReviewRepo) Featured(minRating, limit int) ([]domain.Review, error) {
	out := []domain.Review{}
	err := r.db.Select(&out, `SELECT `+reviewCols+` FROM reviews
		WHERE parent_id IS NULL AND rating >= ?
		ORDER BY rating DESC, created_at DESC, rowid DESC LIMIT ?`, minRating, limit)
	return out, err
}

func (r *ReviewRepo) Update(rv *domain.Review) error {
	rv.UpdatedAt = now()
	res, err := r.db.Exec(`UPDATE reviews SET rating = ?, comment = ?, status = ?, updated_at = ? WHERE id = ?`,
		rv.Rating, rv.Comment, rv.Status, rv.UpdatedAt, rv.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ReviewRepo) SetStatus(id, status string) error {
	res, err := r.db.Exec(`UPDATE reviews SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Delete removes a review with its replies; likes follow through ON DELETE CASCADE.
func (r *ReviewRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM reviews WHERE id = ? OR parent_id = ?`, id, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// ToggleLike adds or removes the user's like and returns the new state and count.
func (r *ReviewRepo) ToggleLike(reviewID, userID string) (liked bool, count int, err error) {
	err = WithTx(r.db, func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`DELETE FROM review_likes WHERE review_id = ? AND user_id = ?`, reviewID, userID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := tx.Exec(`INSERT INTO review_likes(review_id, user_id, created_at) VALUES(?,?,?)`,
				reviewID, userID, now()); err != nil {
				return err
			}
			liked = true
		}
		return tx.Get(&count, `SELECT COUNT(*) FROM review_likes WHERE review_id = ?`, reviewID)
	})
	return liked, count, err
}

func (r *ReviewRepo) attachLikes(list []domain.Review) error {
	for i := range list {
		list[i].Likes = []string{}
	}
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	idx := make(map[string]int, len(list))
	for i := range list {
		ids[i] = list[i].ID
		idx[list[i].ID] = i
	}
	query, args, err := sqlx.In(`SELECT review_id, user_id FROM review_likes
		WHERE review_id IN (?) ORDER BY created_at`, ids)
	if err != nil {
		return err
	}
	var likes []struct {
		ReviewID string `db:"review_id"`
		UserID   string `db:"user_id"`
	}
	if err := r.db.Select(&likes, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, l := range likes {
		i := idx[l.ReviewID]
		list[i].Likes = append(list[i].Likes, l.UserID)
	}
	return nil
}

// CountNew is the number of top-level reviews nobody has looked at yet.
func (r *ReviewRepo) CountNew() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM reviews WHERE parent_id IS NULL AND status = 'new'`)
	return n, err
}
