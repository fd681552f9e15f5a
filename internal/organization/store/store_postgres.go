package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"voluntr/internal/organization/models"
	"voluntr/internal/platform/postgres"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
	txcontext "voluntr/pkg/platform/tx"
)

// PostgresStore persists organizations in the organizations table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orgColumns = `id, admin_account_id, name, registration_number, registration_docs_url, tax_id,
	description, logo_url, gallery_urls, contact_name, contact_designation,
	verification_status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	var (
		org     models.Organization
		orgID   uuid.UUID
		adminID uuid.UUID
		status  string
		gallery pq.StringArray
	)
	if err := row.Scan(&orgID, &adminID, &org.Name, &org.RegistrationNumber, &org.RegistrationDocsURL, &org.TaxID,
		&org.Description, &org.LogoURL, &gallery, &org.ContactName, &org.ContactDesignation,
		&status, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return nil, err
	}
	org.ID = id.OrganizationID(orgID)
	org.AdminAccountID = id.AccountID(adminID)
	org.VerificationStatus = models.VerificationStatus(status)
	org.GalleryURLs = []string(gallery)
	if org.GalleryURLs == nil {
		org.GalleryURLs = []string{}
	}
	return &org, nil
}

func (s *PostgresStore) CreateIfAvailable(ctx context.Context, org *models.Organization) error {
	const query = `
		INSERT INTO organizations (` + orgColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(org.ID), uuid.UUID(org.AdminAccountID), org.Name, org.RegistrationNumber, org.RegistrationDocsURL, org.TaxID,
		org.Description, org.LogoURL, pq.Array(org.GalleryURLs), org.ContactName, org.ContactDesignation,
		string(org.VerificationStatus), org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, org *models.Organization) error {
	const query = `
		UPDATE organizations SET
			name = $2, registration_number = $3, registration_docs_url = $4, tax_id = $5,
			description = $6, logo_url = $7, gallery_urls = $8, contact_name = $9,
			contact_designation = $10, verification_status = $11, updated_at = $12
		WHERE id = $1
	`
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(org.ID), org.Name, org.RegistrationNumber, org.RegistrationDocsURL, org.TaxID,
		org.Description, org.LogoURL, pq.Array(org.GalleryURLs), org.ContactName,
		org.ContactDesignation, string(org.VerificationStatus), org.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update organization: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Organization, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE `+where, arg)
	org, err := scanOrganization(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find organization: %w", err)
	}
	return org, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	return s.findOne(ctx, "id = $1", uuid.UUID(orgID))
}

func (s *PostgresStore) FindByAdmin(ctx context.Context, admin id.AccountID) (*models.Organization, error) {
	return s.findOne(ctx, "admin_account_id = $1", uuid.UUID(admin))
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `SELECT `+orgColumns+` FROM organizations ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()
	var out []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListByIDs(ctx context.Context, ids []id.OrganizationID) (map[id.OrganizationID]*models.Organization, error) {
	out := make(map[id.OrganizationID]*models.Organization, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	strs := make([]string, len(ids))
	for i, orgID := range ids {
		strs[i] = orgID.String()
	}
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = ANY($1::uuid[])`, pq.Array(strs))
	if err != nil {
		return nil, fmt.Errorf("list organizations by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out[org.ID] = org
	}
	return out, rows.Err()
}

// Execute locks the row with SELECT ... FOR UPDATE, validates, mutates and
// writes it back. It joins the caller's transaction or opens its own.
func (s *PostgresStore) Execute(ctx context.Context, orgID id.OrganizationID, validate func(*models.Organization) error, mutate func(*models.Organization)) (*models.Organization, error) {
	var result *models.Organization
	err := postgres.NewTxRunner(s.db).RunInTx(ctx, func(txCtx context.Context) error {
		org, err := s.findOne(txCtx, "id = $1 FOR UPDATE", uuid.UUID(orgID))
		if err != nil {
			return err
		}
		if err := validate(org); err != nil {
			return err
		}
		mutate(org)
		if err := s.Update(txCtx, org); err != nil {
			return err
		}
		result = org
		return nil
	})
	return result, err
}
