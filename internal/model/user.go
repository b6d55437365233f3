// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Accounts come from two places: the email/password registration form, or a
// Firebase (Google) sign-in. Federated-only accounts carry an empty
// PasswordHash, so they can never pass the password login path.
//
// Email is unique case-insensitively; the users table enforces this with
// UNIQUE COLLATE NOCASE so two concurrent registrations can't both win.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialized; "" for federated-only accounts
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	GoogleID     string    `json:"-"` // Firebase UID, set on first federated login
	HasProfile   bool      `json:"hasProfile"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserView is the sanitized representation returned by the auth endpoints.
// It drops the password hash and the federated subject id.
type UserView struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	HasProfile bool   `json:"hasProfile"`
}

// View derives the sanitized representation of u.
func (u *User) View() UserView {
	return UserView{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		HasProfile: u.HasProfile,
	}
}
