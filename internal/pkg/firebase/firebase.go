// Package firebase initialises the Admin SDK used for ID-token sign-in and FCM.
package firebase

import (
	"context"
	"errors"
	"fmt"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("firebase credentials not configured")

// App bundles the Admin SDK clients the service uses.
type App struct {
	Auth      *auth.Client
	Messaging *messaging.Client
}

// New loads the service-account file and opens the Auth and Messaging clients.
func New(ctx context.Context, credentialsFile string) (*App, error) {
	if credentialsFile == "" {
		return nil, ErrNotConfigured
	}

	app, err := fb.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}

	return &App{Auth: authClient, Messaging: msgClient}, nil
}

// TokenVerifier checks Firebase ID tokens and yields the Firebase uid.
type TokenVerifier struct {
	client *auth.Client
}

func NewTokenVerifier(client *auth.Client) *TokenVerifier {
	return &TokenVerifier{client: client}
}

func (v *TokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}
