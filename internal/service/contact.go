package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amadou/nexus-connect/internal/model"
	"github.com/amadou/nexus-connect/internal/repository"
)

// ContactService accepts messages from the public contact form. No
// authentication; rate limiting is the deployment's concern (reverse
// proxy), not this service's.
type ContactService struct {
	messages repository.ContactMessageRepository
	logger   *slog.Logger
}

// NewContactService creates a ContactService.
func NewContactService(messages repository.ContactMessageRepository, logger *slog.Logger) *ContactService {
	return &ContactService{messages: messages, logger: logger}
}

type contactInput struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Subject string `validate:"required"`
	Message string `validate:"required"`
}

// Submit validates and stores a contact message with status "new".
func (s *ContactService) Submit(ctx context.Context, name, email, subject, message string) (*model.ContactMessage, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	subject = strings.TrimSpace(subject)

	if err := checkInput(contactInput{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	}); err != nil {
		return nil, err
	}

	msg := &model.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("service/contact: storing message from %s: %w", email, err)
	}

	s.logger.Info("contact message received",
		slog.String("messageID", msg.ID),
		slog.String("subject", msg.Subject),
	)

	return msg, nil
}
