package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/azizikri/coach-ledger/internal/config"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

func Topics() []string {
	return []string{
		TopicSaleCompleted,
		TopicSaleRetry,
		TopicSaleDLQ,
		TopicNotifications,
	}
}

func partitionsFor(topic string, cfg *config.Config) int32 {
	if strings.HasSuffix(topic, TopicRetrySuffix) || strings.HasSuffix(topic, TopicDLQSuffix) {
		return int32(cfg.RetryPartitions())
	}
	return int32(cfg.TopicPartitions())
}

func EnsureTopics(ctx context.Context, client *kgo.Client, cfg *config.Config, logger *slog.Logger) error {
	adm := kadm.NewClient(client)
	replicationFactor := cfg.ReplicationFactor()

	for _, topic := range Topics() {
		resp, err := adm.CreateTopics(ctx, partitionsFor(topic, cfg), replicationFactor, nil, topic)
		if err != nil {
			return fmt.Errorf("failed to create topic %s: %w", topic, err)
		}
		for _, detail := range resp {
			if detail.Err != nil && !errors.Is(detail.Err, kerr.TopicAlreadyExists) {
				return fmt.Errorf("failed to create topic %s: %w", detail.Topic, detail.Err)
			}
		}
	}

	logger.Info("kafka topics ensured", "topics", Topics())
	return nil
}
