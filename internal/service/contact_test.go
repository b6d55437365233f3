package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/amadou/nexus-connect/internal/apperror"
	"github.com/amadou/nexus-connect/internal/model"
)

// fakeContactRepo stores submitted messages in order.
type fakeContactRepo struct {
	messages  []*model.ContactMessage
	createErr error
}

func (f *fakeContactRepo) Create(ctx context.Context, msg *model.ContactMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	msg.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	msg.Status = model.MessageStatusNew
	msg.CreatedAt = time.Now().UTC()
	copied := *msg
	f.messages = append(f.messages, &copied)
	return nil
}

func TestContactSubmit_Success(t *testing.T) {
	repo := &fakeContactRepo{}
	svc := NewContactService(repo, testLogger())

	msg, err := svc.Submit(context.Background(), "  Moussa Ba  ", "moussa@example.com", "Partenariat", "Bonjour, je souhaite...")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if msg.ID == "" {
		t.Error("Submit() did not assign an ID")
	}
	if msg.Status != model.MessageStatusNew {
		t.Errorf("Status = %q, want %q", msg.Status, model.MessageStatusNew)
	}
	if msg.Name != "Moussa Ba" {
		t.Errorf("Name = %q, surrounding whitespace should be trimmed", msg.Name)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("stored %d messages, want 1", len(repo.messages))
	}
}

func TestContactSubmit_Validation(t *testing.T) {
	tests := []struct {
		name                            string
		msgName, email, subject, msgTxt string
	}{
		{"missing name", "", "a@example.com", "Sujet", "Corps"},
		{"missing email", "Nom", "", "Sujet", "Corps"},
		{"bad email", "Nom", "not-an-email", "Sujet", "Corps"},
		{"missing subject", "Nom", "a@example.com", "", "Corps"},
		{"missing message", "Nom", "a@example.com", "Sujet", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeContactRepo{}
			svc := NewContactService(repo, testLogger())

			_, err := svc.Submit(context.Background(), tt.msgName, tt.email, tt.subject, tt.msgTxt)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Submit() error = %v, want ErrValidation", err)
			}
			if len(repo.messages) != 0 {
				t.Error("nothing should be persisted when validation fails")
			}
		})
	}
}

func TestContactSubmit_RepositoryError(t *testing.T) {
	repo := &fakeContactRepo{createErr: errors.New("disk full")}
	svc := NewContactService(repo, testLogger())

	_, err := svc.Submit(context.Background(), "Nom", "a@example.com", "Sujet", "Corps")
	if err == nil {
		t.Fatal("Submit() should propagate repository errors")
	}
}
