package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"voluntr/internal/identity/models"
	"voluntr/internal/platform/postgres"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
	txcontext "voluntr/pkg/platform/tx"
)

// PostgresStore persists accounts in the accounts table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, email, display_name, avatar_url, provider, provider_subject, role,
	is_profile_complete, legal_name, phone, date_of_birth, location, max_distance_km,
	skills, interests, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a         models.Account
		accountID uuid.UUID
		role      sql.NullString
		dob       sql.NullTime
		skills    pq.StringArray
		interests pq.StringArray
	)
	if err := row.Scan(&accountID, &a.Email, &a.DisplayName, &a.AvatarURL, &a.Provider, &a.ProviderSubject, &role,
		&a.ProfileComplete, &a.LegalName, &a.Phone, &dob, &a.Location, &a.MaxDistanceKm,
		&skills, &interests, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ID = id.AccountID(accountID)
	a.Role = models.Role(role.String)
	if dob.Valid {
		t := dob.Time
		a.DateOfBirth = &t
	}
	a.Skills = []string(skills)
	if a.Skills == nil {
		a.Skills = []string{}
	}
	a.Interests = []string(interests)
	if a.Interests == nil {
		a.Interests = []string{}
	}
	return &a, nil
}

func nullRole(r models.Role) sql.NullString {
	return sql.NullString{String: string(r), Valid: r != ""}
}

func (s *PostgresStore) CreateIfAvailable(ctx context.Context, a *models.Account) error {
	const query = `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(a.ID), models.NormalizeEmail(a.Email), a.DisplayName, a.AvatarURL, a.Provider, a.ProviderSubject, nullRole(a.Role),
		a.ProfileComplete, a.LegalName, a.Phone, a.DateOfBirth, a.Location, a.MaxDistanceKm,
		pq.Array(a.Skills), pq.Array(a.Interests), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Account, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	return s.findOne(ctx, "id = $1", uuid.UUID(accountID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findOne(ctx, "lower(email) = $1", models.NormalizeEmail(email))
}

func (s *PostgresStore) ListByIDs(ctx context.Context, ids []id.AccountID) (map[id.AccountID]*models.Account, error) {
	out := make(map[id.AccountID]*models.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	strs := make([]string, len(ids))
	for i, accountID := range ids {
		strs[i] = accountID.String()
	}
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ANY($1::uuid[])`, pq.Array(strs))
	if err != nil {
		return nil, fmt.Errorf("list accounts by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, a *models.Account) error {
	const query = `
		UPDATE accounts SET
			display_name = $2, avatar_url = $3, role = $4, is_profile_complete = $5,
			legal_name = $6, phone = $7, date_of_birth = $8, location = $9,
			max_distance_km = $10, skills = $11, interests = $12, updated_at = $13
		WHERE id = $1
	`
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(a.ID), a.DisplayName, a.AvatarURL, nullRole(a.Role), a.ProfileComplete,
		a.LegalName, a.Phone, a.DateOfBirth, a.Location,
		a.MaxDistanceKm, pq.Array(a.Skills), pq.Array(a.Interests), a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Execute locks the account row, validates, mutates and writes it back.
func (s *PostgresStore) Execute(ctx context.Context, accountID id.AccountID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	var result *models.Account
	err := postgres.NewTxRunner(s.db).RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.findOne(txCtx, "id = $1 FOR UPDATE", uuid.UUID(accountID))
		if err != nil {
			return err
		}
		if err := validate(a); err != nil {
			return err
		}
		mutate(a)
		if err := s.Update(txCtx, a); err != nil {
			return err
		}
		result = a
		return nil
	})
	return result, err
}
