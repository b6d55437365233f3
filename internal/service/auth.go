package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amadou/nexus-connect/internal/apperror"
	"github.com/amadou/nexus-connect/internal/auth"
	"github.com/amadou/nexus-connect/internal/model"
	"github.com/amadou/nexus-connect/internal/repository"
)

// TokenTTL is the lifetime of every access token issued by this service.
const TokenTTL = 7 * 24 * time.Hour

// AuthService orchestrates registration, password login, and federated
// (Firebase) login.
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt),
//	                     FirebaseVerifier (provider tokens)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	firebase  auth.FirebaseVerifier
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// firebase may be nil when federated login is not configured; the firebase
// login path then fails with AuthenticationFailed.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	firebase auth.FirebaseVerifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		firebase:  firebase,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token so the handler
// can build the credential response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

type registerInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Register creates a password account and issues a 7-day token.
//
// The email-existence check gives a friendly conflict message; the UNIQUE
// constraint on users.email is what actually guarantees uniqueness when two
// registrations race.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := checkInput(registerInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperror.Conflict("email already registered")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return s.issue(user)
}

// Login authenticates an email/password pair and issues a 7-day token.
//
// Unknown email, federated-only account, and wrong password all produce the
// same Unauthorized error, no oracle about which part was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("incorrect email or password")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", email, err)
	}

	if user.PasswordHash == "" {
		return nil, apperror.Unauthorized("incorrect email or password")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("incorrect email or password")
	}

	return s.issue(user)
}

// LoginFirebase verifies a provider-issued ID token and logs the subject
// in, creating the account on first contact.
//
// When the verified email matches an existing password account that has no
// federated id yet, the Firebase UID is attached to it (first write wins).
// Either way a fresh 7-day token is issued.
func (s *AuthService) LoginFirebase(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.firebase == nil {
		return nil, apperror.AuthFailed("federated login is not configured")
	}

	fbUser, err := s.firebase.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn("firebase token rejected", slog.String("error", err.Error()))
		return nil, apperror.AuthFailed("firebase authentication failed")
	}

	user, err := s.users.GetByEmail(ctx, fbUser.Email)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		// First federated login: create an account with no password.
		user = &model.User{
			Email:     fbUser.Email,
			FirstName: fbUser.FirstName,
			LastName:  fbUser.LastName,
			GoogleID:  fbUser.UID,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating federated user %s: %w", fbUser.Email, err)
		}
		s.logger.Info("federated user created",
			slog.String("userID", user.ID),
			slog.String("email", user.Email),
		)
	case err != nil:
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", fbUser.Email, err)
	default:
		if user.GoogleID == "" {
			if err := s.users.SetGoogleID(ctx, user.ID, fbUser.UID); err != nil {
				return nil, fmt.Errorf("service/auth: attaching google id to user %s: %w", user.ID, err)
			}
			user.GoogleID = fbUser.UID
		}
	}

	return s.issue(user)
}

// CurrentUser resolves a user ID (taken from a validated token's subject)
// to the stored account. A missing account is Unauthorized, not NotFound:
// from the caller's perspective the credential is simply invalid.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("could not validate credentials")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}
	return user, nil
}

// ValidateToken validates a JWT string and returns the userID it encodes.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", apperror.Unauthorized("could not validate credentials")
	}
	return userID, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateWithDuration(user.ID, TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
