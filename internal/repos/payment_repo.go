package repos

import "github.com/jmoiron/sqlx"

// PaymentRepo records processed gateway events so a redelivered webhook is a no-op.
type PaymentRepo struct{ db *sqlx.DB }

func NewPaymentRepo(db *sqlx.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// RecordEvent stores the event id. It returns false when the id was seen before.
func (r *PaymentRepo) RecordEvent(tx *sqlx.Tx, eventID, orderID, typ string) (bool, error) {
	res, err := tx.Exec(`
		INSERT INTO payment_events(event_id, order_id, type, received_at)
		VALUES(?,?,?,?)
		ON CONFLICT(event_id) DO NOTHING
	`, eventID, orderID, typ, now())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PaymentRepo) Seen(eventID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM payment_events WHERE event_id = ?`, eventID)
	return n > 0, err
}
