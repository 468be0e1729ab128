// Package push delivers device notifications through Firebase Cloud Messaging.
package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// Pusher sends a single notification to a device registration token.
type Pusher interface {
	SendToDevice(ctx context.Context, token, title, body string) error
}

// FirebasePusher implements Pusher with the FCM client.
type FirebasePusher struct {
	client *messaging.Client
}

func NewFirebasePusher(client *messaging.Client) *FirebasePusher {
	return &FirebasePusher{client: client}
}

func (p *FirebasePusher) SendToDevice(ctx context.Context, token, title, body string) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: title, Body: body},
	})
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
