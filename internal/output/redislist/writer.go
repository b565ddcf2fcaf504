package redislist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"logwatch/pkg/models"
)

// Config configures the Redis list writer.
type Config struct {
	Addr       string
	Password   string
	DB         int
	SummaryKey string
	AlertKey   string
	MaxLen     int64
}

// Writer appends summaries and alert edges to capped Redis lists.
type Writer struct {
	client     *redis.Client
	summaryKey string
	alertKey   string
	maxLen     int64
	timeout    time.Duration
}

// NewWriter connects to Redis and verifies the connection.
func NewWriter(cfg Config) (*Writer, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.SummaryKey) == "" {
		cfg.SummaryKey = "logwatch:summaries"
	}
	if strings.TrimSpace(cfg.AlertKey) == "" {
		cfg.AlertKey = "logwatch:alerts"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis output: %w", err)
	}

	return &Writer{
		client:     client,
		summaryKey: cfg.SummaryKey,
		alertKey:   cfg.AlertKey,
		maxLen:     cfg.MaxLen,
		timeout:    5 * time.Second,
	}, nil
}

// RenderSummary appends a summary envelope.
func (w *Writer) RenderSummary(stats *models.SummaryStats) error {
	return w.push(w.summaryKey, models.SummaryEnvelope(stats))
}

// RenderAlert appends onset and recovery envelopes.
func (w *Writer) RenderAlert(event models.AlertEvent) error {
	if !models.Reportable(event.State) {
		return nil
	}
	return w.push(w.alertKey, models.AlertEnvelope(event))
}

func (w *Writer) push(key string, env models.Envelope) error {
	payload, err := encode(env)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	pipe := w.client.Pipeline()
	pipe.RPush(ctx, key, payload)
	if w.maxLen > 0 {
		pipe.LTrim(ctx, key, -w.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push %s to redis %s: %w", env.Kind, key, err)
	}
	return nil
}

// Close closes Redis resources.
func (w *Writer) Close() error {
	if w == nil || w.client == nil {
		return nil
	}
	return w.client.Close()
}

func encode(env models.Envelope) (string, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", env.Kind, err)
	}
	return string(data), nil
}
