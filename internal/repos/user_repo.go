package repos

import (
	"encoding/json"
	"time"

	"leder/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, password_hash, first_name, last_name, middle_name, phone, avatar, role,
    saved_address_json, created_at, updated_at`

func decodeUser(u *domain.User) *domain.User {
	if u.AddressJSON != "" {
		var a domain.Address
		if json.Unmarshal([]byte(u.AddressJSON), &a) == nil {
			u.SavedAddress = &a
		}
	}
	return u
}

func encodeAddress(a *domain.Address) string {
	if a == nil {
		return ""
	}
	b, _ := json.Marshal(a)
	return string(b)
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE email = ?`, email); err != nil {
		return nil, notFound(err)
	}
	return decodeUser(&u), nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return decodeUser(&u), nil
}

// Create inserts a user. A taken e-mail (any case) returns ErrConflict.
func (r *UserRepo) Create(u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = now()
	u.AddressJSON = encodeAddress(u.SavedAddress)
	_, err := r.DB.NamedExec(`
		INSERT INTO users(id, email, password_hash, first_name, last_name, middle_name, phone, avatar,
		  role, saved_address_json, created_at)
		VALUES(:id, :email, :password_hash, :first_name, :last_name, :middle_name, :phone, :avatar,
		  :role, :saved_address_json, :created_at)
	`, u)
	return conflict(err)
}

// Update writes every mutable profile column, including role and hash.
func (r *UserRepo) Update(u *domain.User) error {
	u.UpdatedAt = now()
	u.AddressJSON = encodeAddress(u.SavedAddress)
	res, err := r.DB.NamedExec(`
		UPDATE users SET password_hash = :password_hash, first_name = :first_name, last_name = :last_name,
		  middle_name = :middle_name, phone = :phone, avatar = :avatar, role = :role,
		  saved_address_json = :saved_address_json, updated_at = :updated_at
		WHERE id = :id
	`, u)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *UserRepo) List() ([]domain.User, error) {
	out := []domain.User{}
	if err := r.DB.Select(&out, `SELECT `+userCols+` FROM users ORDER BY created_at DESC, rowid DESC`); err != nil {
		return nil, err
	}
	for i := range out {
		decodeUser(&out[i])
	}
	return out, nil
}

// Authors returns the public summaries of the given users keyed by id.
func (r *UserRepo) Authors(ids []string) (map[string]*domain.Author, error) {
	out := map[string]*domain.Author{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT id, first_name, last_name, avatar, role FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID        string `db:"id"`
		FirstName string `db:"first_name"`
		LastName  string `db:"last_name"`
		Avatar    string `db:"avatar"`
		Role      string `db:"role"`
	}
	if err := r.DB.Select(&rows, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, a := range rows {
		out[a.ID] = &domain.Author{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, Avatar: a.Avatar, Role: a.Role}
	}
	return out, nil
}

// CreateSession stores a new opaque session id for the user.
func (r *UserRepo) CreateSession(userID string, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	ts := now()
	exp := time.Now().UTC().Add(ttl).Format(tsLayout)
	_, err := r.DB.Exec(`
		INSERT INTO sessions(id, user_id, created_at, expires_at, last_seen)
		VALUES(?,?,?,?,?)
	`, sid, userID, ts, exp, ts)
	return sid, err
}

// SessionUser resolves a live session to its user and refreshes last_seen.
// Unknown and expired sessions return ErrNotFound.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.middle_name, u.phone,
		  u.avatar, u.role, u.saved_address_json, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ? AND s.expires_at > ?
	`, sid, now())
	if err != nil {
		return nil, notFound(err)
	}
	_, _ = r.DB.Exec(`UPDATE sessions SET last_seen = ? WHERE id = ?`, now(), sid)
	return decodeUser(&u), nil
}

func (r *UserRepo) DeleteSession(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id = ?`, sid)
	return err
}

// PurgeSessions drops expired sessions.
func (r *UserRepo) PurgeSessions() (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
