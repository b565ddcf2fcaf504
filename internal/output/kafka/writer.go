package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"logwatch/internal/logger"
	"logwatch/pkg/models"
)

// Config configures the Kafka writer.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
	Timeout  time.Duration
}

// Writer produces summaries and alert edges to a Kafka topic. The message key
// is the envelope kind so consumers can split the stream.
type Writer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewWriter connects a synchronous producer to the brokers.
func NewWriter(cfg Config) (*Writer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are empty")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is empty")
	}

	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	conf.Producer.RequiredAcks = sarama.WaitForLocal
	if cfg.ClientID != "" {
		conf.ClientID = cfg.ClientID
	}
	if cfg.Timeout > 0 {
		conf.Net.DialTimeout = cfg.Timeout
		conf.Producer.Timeout = cfg.Timeout
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newWriter(producer, cfg.Topic), nil
}

func newWriter(producer sarama.SyncProducer, topic string) *Writer {
	return &Writer{producer: producer, topic: topic}
}

// RenderSummary produces a summary message.
func (w *Writer) RenderSummary(stats *models.SummaryStats) error {
	return w.send(models.SummaryEnvelope(stats))
}

// RenderAlert produces onset and recovery messages.
func (w *Writer) RenderAlert(event models.AlertEvent) error {
	if !models.Reportable(event.State) {
		return nil
	}
	return w.send(models.AlertEnvelope(event))
}

func (w *Writer) send(env models.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", env.Kind, err)
	}
	partition, offset, err := w.producer.SendMessage(&sarama.ProducerMessage{
		Topic: w.topic,
		Key:   sarama.StringEncoder(env.Kind),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("produce %s to %s: %w", env.Kind, w.topic, err)
	}
	logger.Debugf("Produced %s to %s[%d]@%d", env.Kind, w.topic, partition, offset)
	return nil
}

// Close flushes and closes the producer.
func (w *Writer) Close() error {
	return w.producer.Close()
}
