package services

import (
	"context"
	"errors"

	"leder/internal/domain"
	"leder/internal/repos"
	"leder/internal/validate"
)

// Mailer delivers the admin's answer to a ticket.
type Mailer interface {
	SendSupportReply(ctx context.Context, t *domain.SupportTicket, reply string) error
}

type SupportService struct {
	Tickets *repos.SupportRepo
	Mail    Mailer
}

func NewSupportService(tickets *repos.SupportRepo, mail Mailer) *SupportService {
	return &SupportService{Tickets: tickets, Mail: mail}
}

type ReplyResult struct {
	Ticket    *domain.SupportTicket `json:"ticket"`
	EmailSent bool                  `json:"emailSent"`
	MailErr   error                 `json:"-"`
}

func (s *SupportService) Open(name, email, subject, message string) (*domain.SupportTicket, error) {
	var ok bool
	t := &domain.SupportTicket{}
	if t.Name, ok = validate.Text(name, 100); !ok {
		return nil, invalid(ErrInvalidInput, "Name is required")
	}
	if t.Email, ok = validate.Email(email); !ok {
		return nil, invalid(ErrInvalidInput, "Invalid email")
	}
	if t.Subject, ok = validate.Text(subject, 200); !ok {
		return nil, invalid(ErrInvalidInput, "Subject is required")
	}
	if t.Message, ok = validate.Text(message, 5000); !ok {
		return nil, invalid(ErrInvalidInput, "Message is required")
	}
	if err := s.Tickets.Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns tickets newest first; "" or "all" returns every ticket.
func (s *SupportService) List(status string) ([]domain.SupportTicket, error) {
	if status == "all" {
		status = ""
	}
	if status != "" && !domain.Contains(domain.TicketStatuses, status) {
		return nil, invalid(ErrInvalidInput, "Unknown ticket status")
	}
	return s.Tickets.List(status)
}

func (s *SupportService) SetStatus(id, status string) (*domain.SupportTicket, error) {
	if !domain.Contains(domain.TicketStatuses, status) {
		return nil, invalid(ErrInvalidInput, "Unknown ticket status")
	}
	if err := s.Tickets.SetStatus(id, status); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Tickets.Get(id)
}

func (s *SupportService) Delete(id string) error {
	err := s.Tickets.Delete(id)
	if errors.Is(err, repos.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Reply e-mails the answer and stores it. The reply is saved even when
// delivery fails; EmailSent tells the caller which happened.
func (s *SupportService) Reply(ctx context.Context, id, reply string) (*ReplyResult, error) {
	reply, ok := validate.Text(reply, 5000)
	if !ok {
		return nil, invalid(ErrInvalidInput, "Reply is required")
	}
	t, err := s.Tickets.Get(id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	res := &ReplyResult{}
	if s.Mail != nil {
		res.MailErr = s.Mail.SendSupportReply(ctx, t, reply)
		res.EmailSent = res.MailErr == nil
	}
	if err := s.Tickets.SaveReply(id, reply); err != nil {
		return nil, err
	}
	if res.Ticket, err = s.Tickets.Get(id); err != nil {
		return nil, err
	}
	return res, nil
}
