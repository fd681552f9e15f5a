//go:build integration

package worker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"voluntr/internal/platform/config"
	"voluntr/internal/platform/kafka"
	"voluntr/internal/platform/postgres"
	id "voluntr/pkg/domain"
	audit "voluntr/pkg/platform/audit"
	"voluntr/pkg/platform/audit/publisher"
	auditpg "voluntr/pkg/platform/audit/store/postgres"
	"voluntr/pkg/platform/audit/worker"
	"voluntr/pkg/testutil/containers"
)

// RelaySuite drives the outbox from a real Postgres table into a Redpanda topic.
type RelaySuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	broker   string
	outbox   *auditpg.Store
	producer *kafka.Producer
	relay    *worker.Relay
}

const relayTopic = "voluntr.audit.relay"

func TestRelaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupSuite() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.broker = containers.GetManager().GetKafka(s.T()).Broker

	p, err := kafka.NewProducer(config.KafkaConfig{Brokers: []string{s.broker}, AuditTopic: relayTopic}, logger)
	s.Require().NoError(err)
	s.Require().NoError(p.EnsureTopic(context.Background(), 1, 1))
	s.producer = p

	s.outbox = auditpg.New(s.pg.DB)
	s.relay = worker.NewRelay(s.outbox, s.producer, postgres.NewTxRunner(s.pg.DB), logger, worker.WithBatchSize(10))
}

func (s *RelaySuite) TearDownSuite() {
	s.producer.Close()
}

func (s *RelaySuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "audit_outbox"))
}

func (s *RelaySuite) TestCommittedEventsReachTheTopicOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pub := publisher.NewPublisher(s.outbox)
	accountID := id.NewAccountID()
	for _, action := range []audit.Action{audit.ActionApplicationSubmitted, audit.ActionApplicationDecided} {
		s.Require().NoError(pub.Emit(ctx, audit.Event{Action: action, AccountID: accountID, Subject: "app-1"}))
	}

	n, err := s.relay.RelayOnce(ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.relay.RelayOnce(ctx)
	s.Require().NoError(err)
	s.Zero(n, "relayed entries are not fetched again")

	pending, err := s.outbox.FetchPending(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(relayTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var keys []string
	for len(keys) < 2 {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "records missing before deadline")
		fetches.EachRecord(func(r *kgo.Record) { keys = append(keys, string(r.Key)) })
	}
	s.Len(keys, 2)
}

func (s *RelaySuite) TestRolledBackEventsAreNeverRelayed() {
	ctx := context.Background()
	tx := postgres.NewTxRunner(s.pg.DB)
	pub := publisher.NewPublisher(s.outbox)

	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := pub.Emit(txCtx, audit.Event{Action: audit.ActionEventCreated, Subject: "evt-1"}); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Require().ErrorIs(err, context.Canceled)

	n, err := s.relay.RelayOnce(ctx)
	s.Require().NoError(err)
	s.Zero(n)
}
