// Package kafka publishes account events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/etnz/papertrade"
	"github.com/segmentio/kafka-go"
)

// Publisher writes events to a topic. Events of the same account share a
// key, so they land in the same partition. Concurrent operations on one
// account may publish out of log order: consumers order by the seq header.
type Publisher struct {
	writer *kafka.Writer
}

var _ papertrade.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher. No connection is made until the first
// event is published.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish writes the event and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, e papertrade.Event) error {
	msg, err := newMessage(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("cannot publish event %s to %s: %w", e.ID, p.writer.Topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the connections.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newMessage(e papertrade.Event) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("cannot marshal event %s: %w", e.ID, err)
	}
	return kafka.Message{
		Key:   []byte(e.AccountID),
		Value: data,
		Time:  e.Time,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID)},
			{Key: "type", Value: []byte(e.Transaction.What())},
			{Key: "seq", Value: []byte(strconv.Itoa(e.Seq))},
		},
	}, nil
}
