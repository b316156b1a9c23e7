package domain

const (
	ReviewNew     = "new"
	ReviewRead    = "read"
	ReviewReplied = "replied"

	TicketOpen    = "open"
	TicketReplied = "replied"
	TicketClosed  = "closed"
)

var (
	ReviewStatuses = []string{ReviewNew, ReviewRead, ReviewReplied}
	TicketStatuses = []string{TicketOpen, TicketReplied, TicketClosed}
)

// Review with Rating 0 is a question, or a reply when ParentID is set.
type Review struct {
	ID        string  `db:"id" json:"id"`
	ProductID string  `db:"product_id" json:"productId"`
	UserID    string  `db:"user_id" json:"userId"`
	Rating    int     `db:"rating" json:"rating"`
	Comment   string  `db:"comment" json:"comment"`
	Status    string  `db:"status" json:"status"`
	ParentID  *string `db:"parent_id" json:"parentId"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
	UpdatedAt string  `db:"updated_at" json:"updatedAt,omitempty"`

	Likes        []string `db:"-" json:"likes"`
	User         *Author  `db:"-" json:"user,omitempty"`
	ProductTitle string   `db:"-" json:"productTitle,omitempty"`
	Replies      []Review `db:"-" json:"replies,omitempty"`
}

func (r *Review) IsReply() bool { return r.ParentID != nil && *r.ParentID != "" }

type SupportTicket struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Email      string `db:"email" json:"email"`
	Subject    string `db:"subject" json:"subject"`
	Message    string `db:"message" json:"message"`
	Status     string `db:"status" json:"status"`
	AdminReply string `db:"admin_reply" json:"adminReply,omitempty"`
	RepliedAt  string `db:"replied_at" json:"repliedAt,omitempty"`
	CreatedAt  string `db:"created_at" json:"createdAt"`
	UpdatedAt  string `db:"updated_at" json:"updatedAt,omitempty"`
}
