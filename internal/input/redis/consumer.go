package redis

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"logwatch/internal/logger"
	"logwatch/internal/transform/accesslog"
	"logwatch/pkg/models"
)

// Config configures the Redis consumer.
type Config struct {
	Addr         string
	Password     string
	DB           int
	Key          string
	BlockTimeout time.Duration
}

// Consumer wraps a Redis list popper.
type Consumer struct {
	client       *redis.Client
	key          string
	blockTimeout time.Duration
}

// NewConsumer creates a Redis consumer for list-based queues.
func NewConsumer(cfg Config) (*Consumer, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("redis key is required")
	}
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Consumer{
		client:       client,
		key:          cfg.Key,
		blockTimeout: cfg.BlockTimeout,
	}, nil
}

// Pop pops one message from the list. It returns nil when the block timeout
// expires without a message.
func (c *Consumer) Pop(ctx context.Context) ([]byte, error) {
	res, err := c.client.BLPop(ctx, c.blockTimeout, c.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

// Close closes the consumer.
func (c *Consumer) Close() error {
	return c.client.Close()
}

// Source decodes CSV access-log lines popped from a Redis list. Each list
// element holds one line.
type Source struct {
	consumer *Consumer
	layout   accesslog.Layout
	line     int
}

// NewSource creates a record source over a Redis list.
func NewSource(cfg Config) (*Source, error) {
	consumer, err := NewConsumer(cfg)
	if err != nil {
		return nil, err
	}
	return &Source{consumer: consumer, layout: accesslog.DefaultLayout()}, nil
}

// Next blocks until a record arrives or ctx is done.
func (s *Source) Next(ctx context.Context) (models.Record, error) {
	for {
		payload, err := s.consumer.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return models.Record{}, ctx.Err()
			}
			logger.Errorf("Failed to pop redis message: %v", err)
			select {
			case <-ctx.Done():
				return models.Record{}, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}
		if payload == nil {
			continue
		}

		s.line++
		rec, skip, err := s.decode(payload)
		if err != nil {
			return models.Record{}, err
		}
		if skip {
			continue
		}
		return rec, nil
	}
}

func (s *Source) decode(payload []byte) (models.Record, bool, error) {
	r := csv.NewReader(strings.NewReader(string(payload)))
	r.FieldsPerRecord = -1
	row, err := r.Read()
	if err != nil {
		return models.Record{}, false, &accesslog.DecodeError{Line: s.line, Err: err}
	}
	if accesslog.IsHeader(row) {
		layout, err := accesslog.LayoutFromHeader(row)
		if err != nil {
			return models.Record{}, false, &accesslog.DecodeError{Line: s.line, Err: err}
		}
		s.layout = layout
		return models.Record{}, true, nil
	}
	rec, err := s.layout.Parse(row, s.line)
	return rec, false, err
}

// Close closes the Redis client.
func (s *Source) Close() error {
	return s.consumer.Close()
}
