package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/marketplace-orders/internal/notification/domain"
)

// Mailer hands a message to the mail transport and returns its Message-ID.
type Mailer interface {
	Send(ctx context.Context, e domain.Email) (string, error)
}

type Service struct {
	log    *slog.Logger
	mailer Mailer
}

func NewService(log *slog.Logger, mailer Mailer) *Service {
	return &Service{log: log, mailer: mailer}
}

func (s *Service) SendEmail(ctx context.Context, e domain.Email) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	id, err := s.mailer.Send(ctx, e.WithDefaultHTML())
	if err != nil {
		s.log.Error("email dispatch failed", "to", e.To, "subject", e.Subject, "err", err)
		return "", err
	}
	s.log.Info("email sent", "to", e.To, "message_id", id)
	return id, nil
}
