package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/amadou/nexus-connect/internal/model"
	"github.com/amadou/nexus-connect/internal/repository"
)

// ContactDB implements repository.ContactMessageRepository.
type ContactDB struct {
	db *DB
}

// compile-time check
var _ repository.ContactMessageRepository = (*ContactDB)(nil)

// Create inserts a contact message with a fresh id, status "new", and the
// current timestamp.
func (r *ContactDB) Create(ctx context.Context, msg *model.ContactMessage) error {
	msg.ID = xid.New().String()
	msg.Status = model.MessageStatusNew
	msg.CreatedAt = time.Now().UTC()

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Message,
		msg.Status,
		encodeTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting contact message from %s: %w", msg.Email, err)
	}

	return nil
}
