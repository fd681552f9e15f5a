package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"voluntr/internal/event/models"
	"voluntr/internal/platform/postgres"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
	txcontext "voluntr/pkg/platform/tx"
	"voluntr/pkg/requestcontext"
)

// PostgresStore persists events in the events table and attendee sets in
// event_attendees, one row per (event, account).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const eventSelect = `
	SELECT e.id, e.organization_id, e.title, e.description, e.location, e.starts_at,
		e.required_volunteers, e.image_url, e.category, e.causes, e.skills, e.status,
		e.created_at, e.updated_at,
		COALESCE(array_agg(a.account_id::text ORDER BY a.added_at) FILTER (WHERE a.account_id IS NOT NULL), '{}')
	FROM events e
	LEFT JOIN event_attendees a ON a.event_id = e.id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e         models.Event
		eventID   uuid.UUID
		orgID     uuid.UUID
		status    string
		causes    pq.StringArray
		skills    pq.StringArray
		attendees pq.StringArray
	)
	if err := row.Scan(&eventID, &orgID, &e.Title, &e.Description, &e.Location, &e.Date,
		&e.RequiredVolunteers, &e.ImageURL, &e.Category, &causes, &skills, &status,
		&e.CreatedAt, &e.UpdatedAt, &attendees); err != nil {
		return nil, err
	}
	e.ID = id.EventID(eventID)
	e.OrganizationID = id.OrganizationID(orgID)
	e.Status = models.Status(status)
	e.Causes = nonNil(causes)
	e.Skills = nonNil(skills)
	e.Attendees = make([]id.AccountID, 0, len(attendees))
	for _, raw := range attendees {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse attendee id: %w", err)
		}
		e.Attendees = append(e.Attendees, id.AccountID(accountID))
	}
	return &e, nil
}

func nonNil(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

func (s *PostgresStore) queryEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	out := []*models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, e *models.Event) error {
	const query = `
		INSERT INTO events (id, organization_id, title, description, location, starts_at,
			required_volunteers, image_url, category, causes, skills, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(e.ID), uuid.UUID(e.OrganizationID), e.Title, e.Description, e.Location, e.Date,
		e.RequiredVolunteers, e.ImageURL, e.Category, pq.Array(e.Causes), pq.Array(e.Skills),
		string(e.Status), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, eventSelect+` WHERE e.id = $1 GROUP BY e.id`, uuid.UUID(eventID))
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListByOrganization(ctx context.Context, orgID id.OrganizationID) ([]*models.Event, error) {
	return s.queryEvents(ctx, eventSelect+`
		WHERE e.organization_id = $1
		GROUP BY e.id
		ORDER BY e.created_at DESC`, uuid.UUID(orgID))
}

func (s *PostgresStore) ListDiscoverable(ctx context.Context, f models.Filter) ([]*models.Event, error) {
	restrict := f.OrganizationIDs != nil
	orgIDs := make([]string, len(f.OrganizationIDs))
	for i, orgID := range f.OrganizationIDs {
		orgIDs[i] = orgID.String()
	}
	return s.queryEvents(ctx, eventSelect+`
		WHERE e.status = 'open'
			AND ($1 = '' OR e.location ILIKE $2 ESCAPE '\' OR e.title ILIKE $2 ESCAPE '\')
			AND ($3 = '' OR lower(e.category) = lower($3)
				OR EXISTS (SELECT 1 FROM unnest(e.causes) c WHERE lower(c) = lower($3)))
			AND (NOT $4 OR e.organization_id = ANY($5::uuid[]))
		GROUP BY e.id
		ORDER BY e.starts_at ASC`,
		strings.TrimSpace(f.Text), likePattern(f.Text), strings.TrimSpace(f.Cause), restrict, pq.Array(orgIDs))
}

// likePattern builds a substring ILIKE pattern with wildcards in q escaped.
func likePattern(q string) string {
	q = strings.TrimSpace(q)
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func (s *PostgresStore) ListByIDs(ctx context.Context, ids []id.EventID) (map[id.EventID]*models.Event, error) {
	out := make(map[id.EventID]*models.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	strs := make([]string, len(ids))
	for i, eventID := range ids {
		strs[i] = eventID.String()
	}
	events, err := s.queryEvents(ctx, eventSelect+` WHERE e.id = ANY($1::uuid[]) GROUP BY e.id`, pq.Array(strs))
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

// AddAttendee inserts the (event, account) pair. With limit > 0 the event row
// is locked first so concurrent approvals serialize on the count check.
func (s *PostgresStore) AddAttendee(ctx context.Context, eventID id.EventID, accountID id.AccountID, limit int) error {
	return postgres.NewTxRunner(s.db).RunInTx(ctx, func(txCtx context.Context) error {
		exec := txcontext.Executor(txCtx, s.db)

		var locked uuid.UUID
		err := exec.QueryRowContext(txCtx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, uuid.UUID(eventID)).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}

		if limit > 0 {
			var (
				count     int
				attending bool
			)
			err := exec.QueryRowContext(txCtx, `
				SELECT count(*), COALESCE(bool_or(account_id = $2), false)
				FROM event_attendees WHERE event_id = $1`,
				uuid.UUID(eventID), uuid.UUID(accountID)).Scan(&count, &attending)
			if err != nil {
				return fmt.Errorf("count attendees: %w", err)
			}
			if !attending && count >= limit {
				return sentinel.ErrCapacityReached
			}
		}

		_, err = exec.ExecContext(txCtx, `
			INSERT INTO event_attendees (event_id, account_id, added_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (event_id, account_id) DO NOTHING`,
			uuid.UUID(eventID), uuid.UUID(accountID), requestcontext.Now(txCtx).UTC())
		if err != nil {
			return fmt.Errorf("insert attendee: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) RemoveAttendee(ctx context.Context, eventID id.EventID, accountID id.AccountID) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND account_id = $2`,
		uuid.UUID(eventID), uuid.UUID(accountID))
	if err != nil {
		return fmt.Errorf("delete attendee: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, eventID id.EventID, status models.Status) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE events SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(eventID), string(status), requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
