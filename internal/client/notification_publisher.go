package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	natsclient "github.com/skandahq/be-bills/internal/nats"
)

// NotificationPublisher publishes bill verification events to NATS for
// consumption by downstream notification services.
//
// Subject convention: notifications.bills.<event_type>
// Event types: bill_uploaded, bill_verified, discrepancy_found,
// bill_corrected, bill_rejected
//
// All publish operations are non-fatal: errors are logged but never
// propagated to the caller, so notification failures never interrupt
// verification operations.
type NotificationPublisher struct {
	nats *natsclient.Client
	log  zerolog.Logger
}

// NotificationEvent is the JSON schema published to NATS.
type NotificationEvent struct {
	EventType    string                 `json:"event_type"`
	ActorID      string                 `json:"actor_id"`
	ResourceType string                 `json:"resource_type,omitempty"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	Severity     string                 `json:"severity,omitempty"`
	Category     string                 `json:"category,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
}

// NewNotificationPublisher creates a publisher backed by the given NATS client.
func NewNotificationPublisher(nats *natsclient.Client, log zerolog.Logger) *NotificationPublisher {
	return &NotificationPublisher{nats: nats, log: log}
}

// PublishBillEvent publishes a bill verification event to NATS.
// Subject: notifications.bills.<eventType>
func (p *NotificationPublisher) PublishBillEvent(ctx context.Context, eventType, billID, actorID string, payload map[string]interface{}) {
	if p.nats == nil {
		return
	}

	event := &NotificationEvent{
		EventType:    eventType,
		ActorID:      actorID,
		ResourceType: "bill",
		ResourceID:   billID,
		Severity:     "info",
		Category:     "bill_verification",
		Payload:      payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("notification: failed to marshal event")
		return
	}

	subject := fmt.Sprintf("notifications.bills.%s", eventType)
	if err := p.nats.Publish(ctx, subject, data); err != nil {
		p.log.Warn().Err(err).
			Str("subject", subject).
			Str("bill_id", billID).
			Msg("notification: failed to publish NATS event (non-fatal)")
		return
	}

	p.log.Debug().
		Str("subject", subject).
		Str("bill_id", billID).
		Msg("notification: event published")
}
