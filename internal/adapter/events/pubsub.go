// Package events publishes verification status changes for downstream consumers
// such as the notification service.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/payamancoders/trustcheck/internal/domain"
)

const publishTimeout = 5 * time.Second

// PubSubPublisher publishes events to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSubPublisher dials Pub/Sub. Without credentialsJSON, Application Default Credentials are used.
func NewPubSubPublisher(ctx context.Context, projectID, topicID, credentialsJSON string, logger *zap.Logger) (*PubSubPublisher, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project id is required")
	}
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	return NewPubSubPublisherFromClient(client, topicID, logger)
}

// NewPubSubPublisherFromClient wraps an existing client.
func NewPubSubPublisherFromClient(client *pubsub.Client, topicID string, logger *zap.Logger) (*PubSubPublisher, error) {
	if topicID == "" {
		return nil, errors.New("pubsub topic is required")
	}
	if logger == nil {
		logger = zap.L()
	}
	return &PubSubPublisher{client: client, topic: client.Topic(topicID), logger: logger}, nil
}

// Publish sends the event and waits for the server ack.
func (p *PubSubPublisher) Publish(ctx context.Context, event domain.VerificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"employerId": strconv.FormatInt(event.EmployerID, 10),
			"status":     string(event.Status),
			"trigger":    string(event.Trigger),
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	p.logger.Debug("verification event published",
		zap.String("message_id", id), zap.Int64("employer_id", event.EmployerID), zap.String("status", string(event.Status)))
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

// NoopPublisher drops events; used when Pub/Sub is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.VerificationEvent) error { return nil }
