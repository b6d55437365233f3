package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/amadou/nexus-connect/internal/apperror"
	"github.com/amadou/nexus-connect/internal/auth"
	"github.com/amadou/nexus-connect/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
// A hand-written fake (no mock framework) keeps the tests easy to read:
// what the fake does is right here.
type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal ID
	nextID int
	// set to a non-nil error to simulate a database failure
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	// Mirror the store's case-insensitive UNIQUE(email) constraint.
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("email already registered")
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now().UTC()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) SetGoogleID(ctx context.Context, id, googleID string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.GoogleID = googleID
	return nil
}

func (f *fakeUserRepo) SetHasProfile(ctx context.Context, id string, has bool) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.HasProfile = has
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

// fakeVerifier stands in for the Firebase SDK: it returns a canned
// identity, or an error when the test simulates a rejected token.
type fakeVerifier struct {
	user *auth.FirebaseUser
	err  error
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (*auth.FirebaseUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService wires an AuthService with fake storage and a fake
// verifier. Pass nil for verifier to simulate an unconfigured deployment.
func newTestAuthService(t *testing.T, repo *fakeUserRepo, verifier auth.FirebaseVerifier) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	ps := auth.NewPasswordServiceForTest(4)

	return NewAuthService(repo, ts, ps, verifier, testLogger())
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	result, err := svc.Register(context.Background(), "ada@example.com", "s3cret-pass", "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.Token == "" {
		t.Fatal("Register() returned empty token")
	}
	if result.User.ID == "" {
		t.Fatal("Register() did not assign a user ID")
	}
	if result.User.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if result.User.FirstName != "Ada" || result.User.LastName != "Lovelace" {
		t.Errorf("names = %q %q", result.User.FirstName, result.User.LastName)
	}

	// The issued token must resolve back to the new user.
	userID, err := svc.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if userID != result.User.ID {
		t.Errorf("token subject = %q, want %q", userID, result.User.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	if _, err := svc.Register(context.Background(), "dup@example.com", "password-1", "", ""); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "dup@example.com", "password-2", "", "")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Register() error = %v, want ErrConflict", err)
	}
}

func TestRegister_DuplicateEmailDifferentCase(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	if _, err := svc.Register(context.Background(), "case@example.com", "password-1", "", ""); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "CASE@Example.COM", "password-2", "", "")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Register() with different case = %v, want ErrConflict", err)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	_, err := svc.Register(context.Background(), "not-an-email", "password", "", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Register() error = %v, want ErrValidation", err)
	}
}

func TestRegister_EmptyPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	_, err := svc.Register(context.Background(), "ok@example.com", "", "", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Register() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	reg, err := svc.Register(context.Background(), "login@example.com", "right-password", "", "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := svc.Login(context.Background(), "login@example.com", "right-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != reg.User.ID {
		t.Errorf("logged in as %q, registered as %q", result.User.ID, reg.User.ID)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	if _, err := svc.Register(context.Background(), "login@example.com", "right-password", "", ""); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := svc.Login(context.Background(), "login@example.com", "wrong-password")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_FederatedOnlyAccount(t *testing.T) {
	// An account created via Firebase has no password hash; password login
	// must fail with the same error as a wrong password.
	repo := newFakeUserRepo()
	verifier := &fakeVerifier{user: &auth.FirebaseUser{
		UID: "fb-uid-1", Email: "fed@example.com", FirstName: "Fed",
	}}
	svc := newTestAuthService(t, repo, verifier)

	if _, err := svc.LoginFirebase(context.Background(), "a-valid-token"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := svc.Login(context.Background(), "fed@example.com", "any-password")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_ErrorsDoNotLeakWhichPartFailed(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	if _, err := svc.Register(context.Background(), "known@example.com", "right-password", "", ""); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, errUnknown := svc.Login(context.Background(), "unknown@example.com", "x")
	_, errWrongPw := svc.Login(context.Background(), "known@example.com", "x")

	if errUnknown == nil || errWrongPw == nil {
		t.Fatal("both logins should fail")
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("error messages differ: %q vs %q, an oracle for email existence",
			errUnknown.Error(), errWrongPw.Error())
	}
}

// =========================================================================
// FIREBASE LOGIN TESTS
// =========================================================================

func TestLoginFirebase_CreatesAccountOnFirstContact(t *testing.T) {
	repo := newFakeUserRepo()
	verifier := &fakeVerifier{user: &auth.FirebaseUser{
		UID: "fb-uid-9", Email: "new@example.com", FirstName: "Ada", LastName: "Lovelace",
	}}
	svc := newTestAuthService(t, repo, verifier)

	result, err := svc.LoginFirebase(context.Background(), "a-valid-token")
	if err != nil {
		t.Fatalf("LoginFirebase() error = %v", err)
	}

	if result.User.GoogleID != "fb-uid-9" {
		t.Errorf("GoogleID = %q, want %q", result.User.GoogleID, "fb-uid-9")
	}
	if result.User.PasswordHash != "" {
		t.Error("federated account should have no password hash")
	}
	if result.Token == "" {
		t.Error("LoginFirebase() returned empty token")
	}

	stored, err := repo.GetByEmail(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("account was not persisted: %v", err)
	}
	if stored.FirstName != "Ada" || stored.LastName != "Lovelace" {
		t.Errorf("stored names = %q %q", stored.FirstName, stored.LastName)
	}
}

func TestLoginFirebase_AttachesUIDToExistingAccount(t *testing.T) {
	repo := newFakeUserRepo()
	verifier := &fakeVerifier{user: &auth.FirebaseUser{
		UID: "fb-uid-3", Email: "linkme@example.com",
	}}
	svc := newTestAuthService(t, repo, verifier)

	reg, err := svc.Register(context.Background(), "linkme@example.com", "a-password", "", "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := svc.LoginFirebase(context.Background(), "a-valid-token")
	if err != nil {
		t.Fatalf("LoginFirebase() error = %v", err)
	}

	if result.User.ID != reg.User.ID {
		t.Errorf("federated login resolved to %q, want existing account %q", result.User.ID, reg.User.ID)
	}
	stored, _ := repo.GetByID(context.Background(), reg.User.ID)
	if stored.GoogleID != "fb-uid-3" {
		t.Errorf("stored GoogleID = %q, want %q", stored.GoogleID, "fb-uid-3")
	}
	// The password is untouched: both login paths keep working.
	if stored.PasswordHash == "" {
		t.Error("linking a federated id must not clear the password hash")
	}
}

func TestLoginFirebase_ExistingUIDNotOverwritten(t *testing.T) {
	repo := newFakeUserRepo()
	verifier := &fakeVerifier{user: &auth.FirebaseUser{
		UID: "fb-uid-first", Email: "stable@example.com",
	}}
	svc := newTestAuthService(t, repo, verifier)

	first, err := svc.LoginFirebase(context.Background(), "a-valid-token")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}

	verifier.user.UID = "fb-uid-second"
	if _, err := svc.LoginFirebase(context.Background(), "a-valid-token"); err != nil {
		t.Fatalf("second login: %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), first.User.ID)
	if stored.GoogleID != "fb-uid-first" {
		t.Errorf("GoogleID = %q, first-attached id should stick", stored.GoogleID)
	}
}

func TestLoginFirebase_RejectedToken(t *testing.T) {
	repo := newFakeUserRepo()
	verifier := &fakeVerifier{err: errors.New("token expired")}
	svc := newTestAuthService(t, repo, verifier)

	_, err := svc.LoginFirebase(context.Background(), "an-expired-token")
	if !errors.Is(err, apperror.ErrAuthFailed) {
		t.Fatalf("LoginFirebase() error = %v, want ErrAuthFailed", err)
	}
}

func TestLoginFirebase_NotConfigured(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	_, err := svc.LoginFirebase(context.Background(), "any-token")
	if !errors.Is(err, apperror.ErrAuthFailed) {
		t.Fatalf("LoginFirebase() error = %v, want ErrAuthFailed", err)
	}
}

// =========================================================================
// CURRENT USER TESTS
// =========================================================================

func TestCurrentUser_Found(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	reg, err := svc.Register(context.Background(), "me@example.com", "a-password", "", "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	user, err := svc.CurrentUser(context.Background(), reg.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.Email != "me@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
}

func TestCurrentUser_MissingAccountIsUnauthorized(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, nil)

	_, err := svc.CurrentUser(context.Background(), "no-such-user")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("CurrentUser() error = %v, want ErrUnauthorized", err)
	}
}
