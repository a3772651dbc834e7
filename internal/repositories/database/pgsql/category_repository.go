package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	"github.com/hearthsoft/household_ledger_app/internal/models"
	"github.com/hearthsoft/household_ledger_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCategoryRepository struct {
	pool *pgxpool.Pool
}

// newPgxCategoryRepository creates a new repository for category data.
func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{pool: pool}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func toModelCategory(d domain.Category) models.Category {
	return models.Category{
		CategoryID:   d.CategoryID,
		HouseholdID:  d.HouseholdID,
		ParentID:     d.ParentID,
		Name:         d.Name,
		CategoryType: models.CategoryType(d.CategoryType),
		IsActive:     d.IsActive,
		AuditFields:  mapping.ToModelAuditFields(d.AuditFields),
	}
}

func toDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID:   m.CategoryID,
		HouseholdID:  m.HouseholdID,
		ParentID:     m.ParentID,
		Name:         m.Name,
		CategoryType: domain.CategoryType(m.CategoryType),
		IsActive:     m.IsActive,
		AuditFields:  mapping.ToDomainAuditFields(m.AuditFields),
	}
}

const categoryColumns = `category_id, household_id, parent_id, name, category_type, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanCategory(row pgx.Row) (models.Category, error) {
	var m models.Category
	err := row.Scan(
		&m.CategoryID,
		&m.HouseholdID,
		&m.ParentID,
		&m.Name,
		&m.CategoryType,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveCategory inserts a new category.
func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := toModelCategory(category)

	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
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
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to save category %s: %w", m.CategoryID, err)
	}
	return nil
}

// SaveCategories inserts several categories in one batch. Used when seeding the
// default tree of a new household.
func (r *PgxCategoryRepository) SaveCategories(ctx context.Context, categories []domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, category := range categories {
		m := toModelCategory(category)
		batch.Queue(query,
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

	br := r.pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute category insert batch: %w", err)
	}
	return nil
}

// FindCategoryByID retrieves a category by its ID.
func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1;`

	m, err := scanCategory(r.pool.QueryRow(ctx, query, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID %s: %w", categoryID, err)
	}

	category := toDomainCategory(m)
	return &category, nil
}

// ListCategories retrieves every category of a household, parents before children.
func (r *PgxCategoryRepository) ListCategories(ctx context.Context, householdID string) ([]domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE household_id = $1
		ORDER BY parent_id NULLS FIRST, name;
	`

	rows, err := r.pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for household %s: %w", householdID, err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		m, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row for household %s: %w", householdID, err)
		}
		categories = append(categories, toDomainCategory(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows for household %s: %w", householdID, err)
	}

	return categories, nil
}

// UpdateCategory updates an existing category.
func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	m := toModelCategory(category)

	// parent_id and category_type are immutable after creation.
	query := `
		UPDATE categories
		SET name = $2, is_active = $3, last_updated_at = $4, last_updated_by = $5
		WHERE category_id = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query,
		m.CategoryID,
		m.Name,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category name %q already taken", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to execute update category %s: %w", m.CategoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateCategory marks a category as inactive. Fails with ErrConflict when
// the category still has active children.
func (r *PgxCategoryRepository) DeactivateCategory(ctx context.Context, categoryID string, userID string, now time.Time) error {
	var activeChildren int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM categories WHERE parent_id = $1 AND is_active = TRUE;`,
		categoryID,
	).Scan(&activeChildren)
	if err != nil {
		return fmt.Errorf("failed to count children of category %s: %w", categoryID, err)
	}
	if activeChildren > 0 {
		return fmt.Errorf("%w: category %s still has %d active children", apperrors.ErrConflict, categoryID, activeChildren)
	}

	query := `
		UPDATE categories
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE category_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.pool.Exec(ctx, query, categoryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate category %s: %w", categoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindCategoryByID(ctx, categoryID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: category %s is already inactive", apperrors.ErrValidation, categoryID)
	}
	return nil
}
