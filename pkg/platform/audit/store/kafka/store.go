// Package kafka publishes audit events to a Kafka topic. The topic is the
// durable audit trail; records are keyed by case ID so every event of a case
// lands on the same partition in emission order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	id "polizaexpress/pkg/domain"
	audit "polizaexpress/pkg/platform/audit"
)

// Store implements audit.Appender on a Kafka topic.
type Store struct {
	client *kgo.Client
	topic  string
}

// New creates a Kafka audit sink. The client lifecycle is managed by the caller.
func New(client *kgo.Client, topic string) *Store {
	return &Store{client: client, topic: topic}
}

// payload is the JSON structure published to Kafka.
type payload struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Timestamp     string `json:"timestamp"`
	CaseID        string `json:"case_id,omitempty"`
	Action        string `json:"action"`
	Step          int    `json:"step,omitempty"`
	Decision      string `json:"decision,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Source        string `json:"source,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	SubjectIDHash string `json:"subject_id_hash,omitempty"`
}

// Append produces the event synchronously and waits for the broker ack.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := Encode(event)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Topic: s.topic,
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if !event.CaseID.IsNil() {
		record.Key = []byte(event.CaseID.String())
	}

	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Encode renders an event as the JSON record value.
func Encode(event audit.Event) ([]byte, error) {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	p := payload{
		ID:            uuid.NewString(),
		Category:      string(category),
		Timestamp:     event.Timestamp.Format(time.RFC3339Nano),
		Action:        event.Action,
		Step:          event.Step,
		Decision:      event.Decision,
		Reason:        event.Reason,
		Source:        event.Source,
		RequestID:     event.RequestID,
		SubjectIDHash: event.SubjectIDHash,
	}
	if !event.CaseID.IsNil() {
		p.CaseID = event.CaseID.String()
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return b, nil
}

// Decode parses a record value produced by Encode.
func Decode(value []byte) (audit.Event, error) {
	var p payload
	if err := json.Unmarshal(value, &p); err != nil {
		return audit.Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return audit.Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	event := audit.Event{
		Category:      audit.EventCategory(p.Category),
		Timestamp:     ts,
		Action:        p.Action,
		Step:          p.Step,
		Decision:      p.Decision,
		Reason:        p.Reason,
		Source:        p.Source,
		RequestID:     p.RequestID,
		SubjectIDHash: p.SubjectIDHash,
	}
	if p.CaseID != "" {
		caseID, err := id.ParseCaseID(p.CaseID)
		if err != nil {
			return audit.Event{}, err
		}
		event.CaseID = caseID
	}
	return event, nil
}

// EnsureTopic creates the audit topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
