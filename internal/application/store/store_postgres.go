package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"voluntr/internal/application/models"
	"voluntr/internal/platform/postgres"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
	txcontext "voluntr/pkg/platform/tx"
)

// PostgresStore persists applications. The applications_event_account_key
// constraint enforces one application per (event, account).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const appColumns = `id, event_id, organization_id, account_id, status, applied_at, decided_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app       models.Application
		appID     uuid.UUID
		eventID   uuid.UUID
		orgID     uuid.UUID
		accountID uuid.UUID
		status    string
		decidedAt sql.NullTime
	)
	if err := row.Scan(&appID, &eventID, &orgID, &accountID, &status, &app.AppliedAt, &decidedAt); err != nil {
		return nil, err
	}
	app.ID = id.ApplicationID(appID)
	app.EventID = id.EventID(eventID)
	app.OrganizationID = id.OrganizationID(orgID)
	app.AccountID = id.AccountID(accountID)
	app.Status = models.Status(status)
	if decidedAt.Valid {
		t := decidedAt.Time
		app.DecidedAt = &t
	}
	return &app, nil
}

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`INSERT INTO applications (`+appColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(app.ID), uuid.UUID(app.EventID), uuid.UUID(app.OrganizationID), uuid.UUID(app.AccountID),
		string(app.Status), app.AppliedAt, app.DecidedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, args ...any) (*models.Application, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT `+appColumns+` FROM applications WHERE `+where, args...)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	return s.findOne(ctx, "id = $1", uuid.UUID(appID))
}

func (s *PostgresStore) FindByEventAndAccount(ctx context.Context, eventID id.EventID, accountID id.AccountID) (*models.Application, error) {
	return s.findOne(ctx, "event_id = $1 AND account_id = $2", uuid.UUID(eventID), uuid.UUID(accountID))
}

// DeletePending deletes in one statement guarded on status, so a decision
// racing the cancel either lands first (ErrInvalidState) or not at all.
func (s *PostgresStore) DeletePending(ctx context.Context, appID id.ApplicationID) error {
	exec := txcontext.Executor(ctx, s.db)
	res, err := exec.ExecContext(ctx, `DELETE FROM applications WHERE id = $1 AND status = 'pending'`, uuid.UUID(appID))
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := s.FindByID(ctx, appID); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, appID id.ApplicationID, status models.Status, decidedAt time.Time) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE applications SET status = $2, decided_at = $3 WHERE id = $1`,
		uuid.UUID(appID), string(status), decidedAt)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, where string, arg any) ([]*models.Application, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+appColumns+` FROM applications WHERE `+where+` ORDER BY applied_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	out := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Application, error) {
	return s.list(ctx, "event_id = $1", uuid.UUID(eventID))
}

func (s *PostgresStore) ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Application, error) {
	return s.list(ctx, "account_id = $1", uuid.UUID(accountID))
}

func (s *PostgresStore) CountPendingByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error) {
	var n int
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT count(*) FROM applications WHERE organization_id = $1 AND status = 'pending'`,
		uuid.UUID(orgID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending applications: %w", err)
	}
	return n, nil
}
