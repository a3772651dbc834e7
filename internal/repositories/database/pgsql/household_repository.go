package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	"github.com/hearthsoft/household_ledger_app/internal/models"
	"github.com/hearthsoft/household_ledger_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxHouseholdRepository struct {
	BaseRepository
}

// newPgxHouseholdRepository creates a new repository for household and membership data.
func newPgxHouseholdRepository(pool *pgxpool.Pool) portsrepo.HouseholdRepositoryFacade {
	return &PgxHouseholdRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.HouseholdRepositoryFacade = (*PgxHouseholdRepository)(nil)

func toDomainHousehold(m models.Household) domain.Household {
	return domain.Household{
		HouseholdID:  m.HouseholdID,
		Name:         m.Name,
		CurrencyCode: m.CurrencyCode,
		IsActive:     m.IsActive,
		AuditFields:  mapping.ToDomainAuditFields(m.AuditFields),
	}
}

const householdColumns = `household_id, name, currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanHousehold(row pgx.Row) (models.Household, error) {
	var m models.Household
	err := row.Scan(
		&m.HouseholdID,
		&m.Name,
		&m.CurrencyCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveHouseholdWithOwner creates the household, its owner membership and the
// seeded default category tree in one DB transaction.
func (r *PgxHouseholdRepository) SaveHouseholdWithOwner(ctx context.Context, household domain.Household, owner domain.UserHousehold, seedCategories []domain.Category) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO households (`+householdColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`,
		household.HouseholdID,
		household.Name,
		household.CurrencyCode,
		household.IsActive,
		household.CreatedAt,
		household.CreatedBy,
		household.LastUpdatedAt,
		household.LastUpdatedBy,
	); err != nil {
		return apperrors.NewAppError(500, "failed to insert household "+household.HouseholdID, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_households (user_id, household_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`, owner.UserID, owner.HouseholdID, owner.Role, owner.JoinedAt); err != nil {
		return apperrors.NewAppError(500, "failed to insert owner membership for household "+household.HouseholdID, err)
	}

	batch := &pgx.Batch{}
	for _, c := range seedCategories {
		m := toModelCategory(c)
		batch.Queue(`
			INSERT INTO categories (`+categoryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
		`,
			m.CategoryID,
			m.HouseholdID,
			m.ParentID,
			m.Name,
			m.CategoryType,
			m.IsActive,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to seed categories for household "+household.HouseholdID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit creation of household "+household.HouseholdID, err)
	}
	return nil
}

// FindHouseholdByID retrieves a household by its ID.
func (r *PgxHouseholdRepository) FindHouseholdByID(ctx context.Context, householdID string) (*domain.Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households WHERE household_id = $1;`

	m, err := scanHousehold(r.Pool.QueryRow(ctx, query, householdID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find household by ID %s: %w", householdID, err)
	}

	household := toDomainHousehold(m)
	return &household, nil
}

// ListHouseholdsByUser retrieves every household the user is an active member of.
func (r *PgxHouseholdRepository) ListHouseholdsByUser(ctx context.Context, userID string) ([]domain.Household, error) {
	query := `
		SELECT h.household_id, h.name, h.currency_code, h.is_active, h.created_at, h.created_by, h.last_updated_at, h.last_updated_by
		FROM households h
		JOIN user_households uh ON uh.household_id = h.household_id
		WHERE uh.user_id = $1 AND uh.role != 'REMOVED'
		ORDER BY h.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query households for user %s: %w", userID, err)
	}
	defer rows.Close()

	households := []domain.Household{}
	for rows.Next() {
		m, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan household row for user %s: %w", userID, err)
		}
		households = append(households, toDomainHousehold(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating household rows for user %s: %w", userID, err)
	}

	return households, nil
}

// ListHouseholdIDs retrieves the IDs of all active households. Used by
// background workers that sweep every household.
func (r *PgxHouseholdRepository) ListHouseholdIDs(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT household_id FROM households WHERE is_active = TRUE;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query household IDs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan household ID row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating household ID rows: %w", err)
	}

	return ids, nil
}

// FindMembership retrieves one user's membership in a household.
func (r *PgxHouseholdRepository) FindMembership(ctx context.Context, userID string, householdID string) (*domain.UserHousehold, error) {
	query := `
		SELECT uh.user_id, u.name, uh.household_id, uh.role, uh.joined_at
		FROM user_households uh
		JOIN users u ON u.user_id = uh.user_id
		WHERE uh.user_id = $1 AND uh.household_id = $2;
	`
	var m domain.UserHousehold
	err := r.Pool.QueryRow(ctx, query, userID, householdID).Scan(
		&m.UserID,
		&m.UserName,
		&m.HouseholdID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership for user %s in household %s: %w", userID, householdID, err)
	}
	return &m, nil
}

// SaveMembership persists a new membership row.
func (r *PgxHouseholdRepository) SaveMembership(ctx context.Context, membership domain.UserHousehold) error {
	query := `
		INSERT INTO user_households (user_id, household_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.HouseholdID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s is already a member of household %s", apperrors.ErrDuplicate, membership.UserID, membership.HouseholdID)
		}
		return fmt.Errorf("failed to save membership: %w", err)
	}
	return nil
}

// UpdateMembershipRole changes an existing member's role.
func (r *PgxHouseholdRepository) UpdateMembershipRole(ctx context.Context, userID string, householdID string, role domain.UserHouseholdRole) error {
	query := `
		UPDATE user_households
		SET role = $3
		WHERE user_id = $1 AND household_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, userID, householdID, role)
	if err != nil {
		return fmt.Errorf("failed to update membership role: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListMembers retrieves the memberships of a household with the member names resolved.
func (r *PgxHouseholdRepository) ListMembers(ctx context.Context, householdID string) ([]domain.UserHousehold, error) {
	query := `
		SELECT uh.user_id, u.name, uh.household_id, uh.role, uh.joined_at
		FROM user_households uh
		JOIN users u ON u.user_id = uh.user_id
		WHERE uh.household_id = $1 AND uh.role != 'REMOVED'
		ORDER BY uh.joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members for household %s: %w", householdID, err)
	}
	defer rows.Close()

	members := []domain.UserHousehold{}
	for rows.Next() {
		var m domain.UserHousehold
		if err := rows.Scan(&m.UserID, &m.UserName, &m.HouseholdID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member row for household %s: %w", householdID, err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows for household %s: %w", householdID, err)
	}

	return members, nil
}
