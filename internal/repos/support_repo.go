package repos

import (
	"leder/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SupportRepo struct{ db *sqlx.DB }

func NewSupportRepo(db *sqlx.DB) *SupportRepo { return &SupportRepo{db: db} }

const ticketCols = `id, name, email, subject, message, status, admin_reply, replied_at, created_at, updated_at`

func (r *SupportRepo) Create(t *domain.SupportTicket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Status = domain.TicketOpen
	t.CreatedAt = now()
	_, err := r.db.NamedExec(`
		INSERT INTO support_tickets(id, name, email, subject, message, status, created_at)
		VALUES(:id, :name, :email, :subject, :message, :status, :created_at)
	`, t)
	return err
}

func (r *SupportRepo) Get(id string) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	if err := r.db.Get(&t, `SELECT `+ticketCols+` FROM support_tickets WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// List returns tickets newest first; empty status means all.
func (r *SupportRepo) List(status string) ([]domain.SupportTicket, error) {
	out := []domain.SupportTicket{}
	q := `SELECT ` + ticketCols + ` FROM support_tickets`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, rowid DESC`
	err := r.db.Select(&out, q, args...)
	return out, err
}

func (r *SupportRepo) SetStatus(id, status string) error {
	res, err := r.db.Exec(`UPDATE support_tickets SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return err
	}
	return affected(res)
}

// SaveReply stores the admin answer and marks the ticket replied.
func (r *SupportRepo) SaveReply(id, reply string) error {
	ts := now()
	res, err := r.db.Exec(`
		UPDATE support_tickets SET admin_reply = ?, replied_at = ?, status = 'replied', updated_at = ?
		WHERE id = ?
	`, reply, ts, ts, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SupportRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM support_tickets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SupportRepo) CountOpen() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM support_tickets WHERE status = 'open'`)
	return n, err
}
