package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "voluntr/pkg/platform/audit"
	txcontext "voluntr/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Rows are written in the caller's transaction and relayed to Kafka later.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// OutboxEntry is an unrelayed outbox row.
type OutboxEntry struct {
	ID        uuid.UUID
	Action    string
	AccountID string
	Payload   []byte
	CreatedAt time.Time
}

// Append writes an audit event to the outbox table.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	var accountID *uuid.UUID
	if !event.AccountID.IsNil() {
		aid := uuid.UUID(event.AccountID)
		accountID = &aid
	}

	const query = `
		INSERT INTO audit_outbox (id, action, account_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		string(event.Action),
		accountID,
		payload,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// FetchPending returns up to limit unrelayed entries, oldest first. Rows are
// locked with SKIP LOCKED so concurrent relays never publish the same entry.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]OutboxEntry, error) {
	const query = `
		SELECT id, action, COALESCE(account_id::text, ''), payload, created_at
		FROM audit_outbox
		WHERE relayed_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.AccountID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkRelayed stamps the given entries as published.
func (s *Store) MarkRelayed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	strs := make([]string, len(ids))
	for i, u := range ids {
		strs[i] = u.String()
	}
	const query = `UPDATE audit_outbox SET relayed_at = $1 WHERE id = ANY($2::uuid[])`
	if _, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query, at, pq.Array(strs)); err != nil {
		return fmt.Errorf("mark outbox relayed: %w", err)
	}
	return nil
}

// ListByAction reads back outbox payloads for an action, newest first.
func (s *Store) ListByAction(ctx context.Context, action audit.Action) ([]audit.Event, error) {
	const query = `SELECT payload FROM audit_outbox WHERE action = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, string(action))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var e audit.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
