//go:build integration

package outbox_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"transparency/internal/audit"
	"transparency/internal/audit/outbox"
	"transparency/pkg/testutil/containers"
)

type OutboxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	store    *outbox.Postgres
	ctx      context.Context
}

func TestOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxSuite))
}

func (s *OutboxSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.redpanda = mgr.GetRedpanda(s.T())
	s.store = outbox.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *OutboxSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "audit_outbox"))
}

func (s *OutboxSuite) TestRelayDeliversToKafka() {
	topic := "audit-" + uuid.NewString()
	producer, err := outbox.NewKafkaProducer([]string{s.redpanda.SeedBroker}, topic)
	s.Require().NoError(err)
	defer producer.Close()
	s.Require().NoError(producer.EnsureTopic(s.ctx, 1, 1))
	s.Require().NoError(producer.EnsureTopic(s.ctx, 1, 1), "idempotent")

	pub := audit.NewPublisher(s.store)
	s.Require().NoError(pub.Emit(s.ctx, audit.Event{
		Type:        audit.EventRequestAnswered,
		TenantID:    7,
		AggregateID: "3f1c",
		Protocol:    "ESIC-2024-000001",
		FromStatus:  "pending",
		ToStatus:    "answered",
	}))

	relay := outbox.NewRelay(s.store, producer)
	n, err := relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	pending, err := s.store.FetchPending(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.SeedBroker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())

	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("3f1c", string(records[0].Key))

	var event audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &event))
	s.Equal(audit.EventRequestAnswered, event.Type)
	s.Equal("ESIC-2024-000001", event.Protocol)
}
