package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher delivers ledger notifications to the notifications topic, keyed
// by recipient so one recipient's messages stay ordered.
type Publisher struct {
	producer producer
	topic    string
}

func NewPublisher(client *kgo.Client) *Publisher {
	return &Publisher{producer: client, topic: TopicNotifications}
}

func (p *Publisher) Notify(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(newNotificationEvent(n))
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(n.RecipientID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(n.Kind)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", n.Kind, err)
	}
	return nil
}
