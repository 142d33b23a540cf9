// Package event publishes domain events to Kafka. Publishing is best effort;
// a broker outage must never fail the request that produced the event.
package event

import (
	"context"
	"log/slog"

	"github.com/quillhq/quill/pkg/kafka"
)

// Topics and event types.
const (
	TopicUserRegistered  = "quill.user.registered"
	TopicDocumentCreated = "quill.document.created"
	TopicDocumentUpdated = "quill.document.updated"
	TopicDocumentDeleted = "quill.document.deleted"

	source = "quill"
)

// Publisher abstracts the Kafka producer so services can be tested without a
// broker.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event kafka.Event) error
}

// Producer emits domain events.
type Producer struct {
	publisher Publisher
	log       *slog.Logger
}

// NewProducer creates a domain event producer. A nil publisher disables
// publishing entirely.
func NewProducer(publisher Publisher, log *slog.Logger) *Producer {
	return &Producer{publisher: publisher, log: log}
}

func (p *Producer) publish(ctx context.Context, topic, key, eventType string, payload any) {
	if p == nil || p.publisher == nil {
		return
	}
	evt := kafka.NewEvent(eventType, source, payload)
	if err := p.publisher.Publish(ctx, topic, key, evt); err != nil {
		p.log.WarnContext(ctx, "event publish failed",
			"topic", topic, "type", eventType, "error", err)
	}
}

// UserRegistered emits a registration event keyed by user id.
func (p *Producer) UserRegistered(ctx context.Context, userID, email string) {
	p.publish(ctx, TopicUserRegistered, userID, "user.registered", map[string]string{
		"user_id": userID,
		"email":   email,
	})
}

// DocumentCreated emits a creation event keyed by document id.
func (p *Producer) DocumentCreated(ctx context.Context, documentID, ownerID string) {
	p.publish(ctx, TopicDocumentCreated, documentID, "document.created", map[string]string{
		"document_id": documentID,
		"owner_id":    ownerID,
	})
}

// DocumentUpdated emits an update event keyed by document id.
func (p *Producer) DocumentUpdated(ctx context.Context, documentID, ownerID string, version int) {
	p.publish(ctx, TopicDocumentUpdated, documentID, "document.updated", map[string]any{
		"document_id": documentID,
		"owner_id":    ownerID,
		"version":     version,
	})
}

// DocumentDeleted emits a deletion event keyed by document id. Permanent is
// false for soft deletes.
func (p *Producer) DocumentDeleted(ctx context.Context, documentID, ownerID string, permanent bool) {
	p.publish(ctx, TopicDocumentDeleted, documentID, "document.deleted", map[string]any{
		"document_id": documentID,
		"owner_id":    ownerID,
		"permanent":   permanent,
	})
}
