package auth

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseUser is the identity extracted from a verified Firebase ID token.
type FirebaseUser struct {
	UID       string // Firebase's subject id, stable per provider account
	Email     string
	FirstName string
	LastName  string
}

// FirebaseVerifier verifies provider-issued ID tokens. It is an interface
// so the auth service and handlers can be tested with a fake instead of
// real Google-signed tokens.
type FirebaseVerifier interface {
	Verify(ctx context.Context, idToken string) (*FirebaseUser, error)
}

// FirebaseProvider verifies ID tokens with the Firebase Admin SDK.
//
// Token verification is an external-collaborator boundary: the SDK fetches
// Google's public keys, checks the signature, issuer, audience and expiry.
// None of that is reimplemented here.
type FirebaseProvider struct {
	client *fbauth.Client
}

var _ FirebaseVerifier = (*FirebaseProvider)(nil)

// NewFirebaseProvider initializes the Admin SDK from service-account
// credentials, either inline JSON (credentialsJSON) or a local file path
// (credentialsFile). Inline JSON wins when both are set, which matches how
// the service is configured in cloud deployments.
func NewFirebaseProvider(ctx context.Context, credentialsJSON, credentialsFile string) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	switch {
	case credentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	default:
		return nil, fmt.Errorf("auth: firebase credentials not configured")
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: creating firebase auth client: %w", err)
	}

	return &FirebaseProvider{client: client}, nil
}

// Verify checks the ID token and extracts the subject identity.
//
// The display name arrives as a single string ("Ada Lovelace"); it is split
// on the first space into first and last name, the same way the profile
// form treats names.
func (p *FirebaseProvider) Verify(ctx context.Context, idToken string) (*FirebaseUser, error) {
	if idToken == "" {
		return nil, fmt.Errorf("auth: empty firebase ID token")
	}

	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("auth: verifying firebase token: %w", err)
	}

	user := &FirebaseUser{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		user.FirstName, user.LastName = splitDisplayName(name)
	}

	if user.Email == "" {
		return nil, fmt.Errorf("auth: firebase token has no email claim")
	}

	return user, nil
}

// splitDisplayName splits "First Rest Of Name" into ("First", "Rest Of Name").
func splitDisplayName(name string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(name), " ")
	return first, last
}
