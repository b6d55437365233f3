package model

import "time"

// Contact message status lifecycle. Messages are created as "new"; the
// read/replied transitions belong to a future admin surface.
const (
	MessageStatusNew     = "new"
	MessageStatusRead    = "read"
	MessageStatusReplied = "replied"
)

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
