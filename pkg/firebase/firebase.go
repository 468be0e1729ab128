package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/goer-app/goer/backend/pkg/logger"
)

// ErrNoCredentials is returned when no service account file is configured.
var ErrNoCredentials = errors.New("firebase: credentials path not set")

// Clients are the two Firebase products the API talks to: Auth verifies ID
// tokens on federated sign-in and Messaging delivers push notifications.
type Clients struct {
	Auth      *auth.Client
	Messaging *messaging.Client
}

// New loads the service account at credentialsPath and opens both clients.
func New(ctx context.Context, credentialsPath string) (*Clients, error) {
	if credentialsPath == "" {
		return nil, ErrNoCredentials
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase: credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firebase: app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: auth client: %w", err)
	}
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: messaging client: %w", err)
	}

	logger.L().Info().Str("credentials", credentialsPath).Msg("firebase clients ready")
	return &Clients{Auth: authClient, Messaging: messagingClient}, nil
}
