package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	NotificationPendingActionCreated  = "pending_action_created"
	NotificationPendingActionApproved = "pending_action_approved"
	NotificationPendingActionRejected = "pending_action_rejected"
)

// Notifier delivers a best-effort message to users. Callers log failures
// and carry on.
type Notifier interface {
	Notify(ctx context.Context, kind string, recipients []uuid.UUID, payload interface{}) error
}

// Publisher is the transport a HubNotifier writes to.
type Publisher interface {
	Publish(recipients []uuid.UUID, payload []byte) error
}

type HubNotifier struct {
	publisher Publisher
}

func NewHubNotifier(publisher Publisher) *HubNotifier {
	return &HubNotifier{publisher: publisher}
}

func (n *HubNotifier) Notify(ctx context.Context, kind string, recipients []uuid.UUID, payload interface{}) error {
	msg, err := json.Marshal(map[string]interface{}{
		"type": kind,
		"data": payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s notification: %w", kind, err)
	}
	if err := n.publisher.Publish(recipients, msg); err != nil {
		return fmt.Errorf("publish %s notification: %w", kind, err)
	}
	return nil
}
