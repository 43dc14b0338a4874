//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	id "polizaexpress/pkg/domain"
	audit "polizaexpress/pkg/platform/audit"
	"polizaexpress/pkg/platform/audit/store/kafka"
	"polizaexpress/pkg/testutil/containers"
)

type KafkaStoreSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaStoreSuite))
}

func (s *KafkaStoreSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *KafkaStoreSuite) TestEventsOfACaseArriveInOrder() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "audit-" + id.NewCaseID().String()
	producer := s.redpanda.NewClient(s.T())
	s.Require().NoError(kafka.EnsureTopic(ctx, producer, topic, 3, 1))
	// Idempotent: a second call finds the topic.
	s.Require().NoError(kafka.EnsureTopic(ctx, producer, topic, 3, 1))

	sink := kafka.New(producer, topic)
	caseID := id.NewCaseID()
	actions := []audit.AuditEvent{
		audit.EventIdentityExtracted,
		audit.EventVitalStatusChecked,
		audit.EventDeathDateExtracted,
		audit.EventFinancialsRetrieved,
		audit.EventEligibilityDecided,
	}
	for i, action := range actions {
		s.Require().NoError(sink.Append(ctx, audit.Event{
			CaseID:    caseID,
			Action:    string(action),
			Step:      i + 1,
			Timestamp: time.Now(),
		}))
	}

	consumer := s.redpanda.NewClient(s.T(),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)

	var got []audit.Event
	for len(got) < len(actions) {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			s.Equal(caseID.String(), string(r.Key))
			event, err := kafka.Decode(r.Value)
			s.Require().NoError(err)
			got = append(got, event)
		})
	}

	for i, e := range got {
		s.Equal(string(actions[i]), e.Action)
		s.Equal(i+1, e.Step)
	}
}
