package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voluntr/pkg/platform/audit/store/postgres"
	txcontext "voluntr/pkg/platform/tx"
)

// Outbox is the relay's view of the audit outbox table.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]postgres.OutboxEntry, error)
	MarkRelayed(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Sink publishes one outbox payload to the broker.
type Sink interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// Counter receives relay outcomes ("published", "failed").
type Counter interface {
	IncAuditRelayed(outcome string)
}

// Relay drains the audit outbox into a Sink on a fixed interval. Each batch
// runs in one transaction; entries are marked relayed only after they publish.
type Relay struct {
	outbox   Outbox
	sink     Sink
	tx       txcontext.Runner
	logger   *slog.Logger
	counter  Counter
	interval time.Duration
	batch    int
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option { return func(r *Relay) { r.interval = d } }
func WithBatchSize(n int) Option          { return func(r *Relay) { r.batch = n } }
func WithCounter(c Counter) Option        { return func(r *Relay) { r.counter = c } }

func NewRelay(outbox Outbox, sink Sink, tx txcontext.Runner, logger *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		outbox:   outbox,
		sink:     sink,
		tx:       tx,
		logger:   logger,
		interval: 2 * time.Second,
		batch:    100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.ErrorContext(ctx, "audit relay batch failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were relayed.
// Publishing stops at the first failure so ordering is preserved; entries
// published before the failure are still marked relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	relayed := 0
	var publishErr error
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entries, err := r.outbox.FetchPending(txCtx, r.batch)
		if err != nil {
			return err
		}
		done := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			headers := map[string]string{"action": e.Action}
			if err := r.sink.Publish(txCtx, e.AccountID, e.Payload, headers); err != nil {
				r.count("failed")
				publishErr = err
				break
			}
			r.count("published")
			done = append(done, e.ID)
		}
		if err := r.outbox.MarkRelayed(txCtx, done, time.Now().UTC()); err != nil {
			return err
		}
		relayed = len(done)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return relayed, publishErr
}

func (r *Relay) count(outcome string) {
	if r.counter != nil {
		r.counter.IncAuditRelayed(outcome)
	}
}
