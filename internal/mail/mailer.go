package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"leder/internal/domain"

	"github.com/gofiber/template/html/v2"
	gomail "github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templates embed.FS

// ErrNotConfigured is returned when no SMTP account is set up.
var ErrNotConfigured = errors.New("smtp is not configured")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer renders and sends transactional e-mail over SMTP.
type Mailer struct {
	cfg    Config
	engine *html.Engine
}

func nl2br(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
}

func New(cfg Config) (*Mailer, error) {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("nl2br", nl2br)
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return &Mailer{cfg: cfg, engine: engine}, nil
}

type replyView struct {
	Name    string
	Reply   string
	Message string
}

// RenderSupportReply builds the HTML body of a ticket answer.
func (m *Mailer) RenderSupportReply(t *domain.SupportTicket, reply string) (string, error) {
	var buf bytes.Buffer
	err := m.engine.Render(&buf, "support_reply", replyView{Name: t.Name, Reply: reply, Message: t.Message})
	return buf.String(), err
}

func (m *Mailer) SendSupportReply(ctx context.Context, t *domain.SupportTicket, reply string) error {
	if m.cfg.Host == "" || m.cfg.Username == "" {
		return ErrNotConfigured
	}
	body, err := m.RenderSupportReply(t, reply)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	if err := msg.FromFormat("Leder Support", from); err != nil {
		return err
	}
	if err := msg.To(t.Email); err != nil {
		return err
	}
	msg.Subject("Re: " + t.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
