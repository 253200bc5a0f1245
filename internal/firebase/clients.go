package firebase

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
)

// Clients bundles the Firebase clients the API wires into services.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Messaging *messaging.Client
}

func NewClients(ctx context.Context, app *firebase.App) (*Clients, error) {
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, err
	}

	// Push delivery is optional; booking flows work without it.
	msg, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("firebase: messaging client unavailable: %v", err)
		msg = nil
	}

	return &Clients{
		Auth:      authClient,
		Firestore: fs,
		Messaging: msg,
	}, nil
}

func (c *Clients) Close() {
	if c == nil || c.Firestore == nil {
		return
	}
	_ = c.Firestore.Close()
}
