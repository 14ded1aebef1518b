package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"anime-api/internal/config"
	"anime-api/internal/models"
	"anime-api/pkg/logger"
)

// Evicter drops a record from this replica's in-process cache.
type Evicter interface {
	Evict(id string)
}

// messageReader is the subset of *kafka.Reader used by consume.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// retryInterval paces partition discovery while the broker is unreachable.
const retryInterval = 5 * time.Second

// Run consumes anime change events and evicts the affected ids from the local
// cache. It reads every partition directly from the newest offset without a
// consumer group, so every replica sees every event and nothing is left
// behind on the broker when a replica goes away. Run returns when ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config, cache Evicter) {
	if !cfg.EventsEnabled() {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}

	var partitions []int
	for {
		var err error
		partitions, err = topicPartitions(ctx, cfg)
		if err == nil {
			break
		}
		logger.Error(ctx, "Worker partition lookup failed", "error", err, "topic", cfg.KafkaTopic)
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryInterval):
		}
	}

	var wg sync.WaitGroup
	for _, p := range partitions {
		reader := kafka.NewReader(readerConfig(cfg, p))
		if err := reader.SetOffset(kafka.LastOffset); err != nil {
			logger.Error(ctx, "Worker set offset failed", "error", err, "partition", p)
			reader.Close()
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()
			consume(ctx, reader, cache)
		}()
	}
	logger.Info(ctx, "Kafka consumer started", "topic", cfg.KafkaTopic, "partitions", len(partitions), "instance", cfg.InstanceID)
	wg.Wait()
}

func topicPartitions(ctx context.Context, cfg *config.Config) ([]int, error) {
	conn, err := kafka.DialContext(ctx, "tcp", cfg.KafkaBrokers[0])
	if err != nil {
		return nil, fmt.Errorf("dial kafka: %w", err)
	}
	defer conn.Close()
	parts, err := conn.ReadPartitions(cfg.KafkaTopic)
	if err != nil {
		return nil, fmt.Errorf("read partitions: %w", err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("topic %q has no partitions", cfg.KafkaTopic)
	}
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func readerConfig(cfg *config.Config, partition int) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:   cfg.KafkaBrokers,
		Topic:     cfg.KafkaTopic,
		Partition: partition,
		MinBytes:  1,
		MaxBytes:  10e6,
	}
}

func consume(ctx context.Context, r messageReader, cache Evicter) {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			logger.Error(ctx, "Worker read failed", "error", err)
			continue
		}
		if err := handleMessage(ctx, cache, msg.Value); err != nil {
			// Skip it; a bad event must not stall the partition.
			logger.Error(ctx, "Worker handle failed", "error", err, "partition", msg.Partition, "offset", msg.Offset, "payload", string(msg.Value))
		}
	}
}

func handleMessage(ctx context.Context, cache Evicter, payload []byte) error {
	var ev models.AnimeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("decode anime event: %w", err)
	}
	if ev.ID == "" {
		return errors.New("anime event without id")
	}
	switch ev.Action {
	case models.ActionCreated, models.ActionUpdated, models.ActionDeleted:
		cache.Evict(ev.ID)
		logger.Debug(ctx, "Evicted anime from local cache", "action", ev.Action, "id", ev.ID)
		return nil
	default:
		return fmt.Errorf("unknown anime event action %q", ev.Action)
	}
}
