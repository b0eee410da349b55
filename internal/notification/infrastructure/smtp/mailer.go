package smtp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/marketplace-orders/internal/notification/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends through one SMTP relay, dialing per message.
type Mailer struct {
	log    *slog.Logger
	client *mail.Client
	from   string
}

func NewMailer(log *slog.Logger, cfg Config) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{log: log, client: client, from: cfg.From}, nil
}

func (m *Mailer) Send(ctx context.Context, e domain.Email) (string, error) {
	msg, err := buildMessage(m.from, e)
	if err != nil {
		return "", err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("%w: smtp send: %v", apperr.ErrUpstream, err)
	}
	return msg.GetMessageID(), nil
}

func buildMessage(from string, e domain.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("sender %q: %w", from, err)
	}
	if err := msg.To(e.To); err != nil {
		return nil, apperr.Invalid("to", err.Error())
	}
	msg.Subject(e.Subject)
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, e.Text)
	if e.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, e.HTML)
	}
	return msg, nil
}
