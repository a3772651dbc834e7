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
	"github.com/shopspring/decimal"
)

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budget templates.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

func toDomainBudgetTemplate(m models.BudgetTemplate) domain.BudgetTemplate {
	return domain.BudgetTemplate{
		BudgetID:      m.BudgetID,
		HouseholdID:   m.HouseholdID,
		CategoryID:    m.CategoryID,
		MonthlyAmount: m.MonthlyAmount,
		IsActive:      m.IsActive,
		AuditFields:   mapping.ToDomainAuditFields(m.AuditFields),
	}
}

const budgetColumns = `budget_id, household_id, category_id, monthly_amount, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanBudgetTemplate(row pgx.Row) (models.BudgetTemplate, error) {
	var m models.BudgetTemplate
	err := row.Scan(
		&m.BudgetID,
		&m.HouseholdID,
		&m.CategoryID,
		&m.MonthlyAmount,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveTemplate persists a new budget template. One active template per
// category, enforced by a unique index.
func (r *PgxBudgetRepository) SaveTemplate(ctx context.Context, template domain.BudgetTemplate) error {
	query := `
		INSERT INTO budget_templates (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		template.BudgetID,
		template.HouseholdID,
		template.CategoryID,
		template.MonthlyAmount,
		template.IsActive,
		template.CreatedAt,
		template.CreatedBy,
		template.LastUpdatedAt,
		template.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a budget already exists for category %s", apperrors.ErrDuplicate, template.CategoryID)
		}
		return apperrors.NewAppError(500, "failed to insert budget template "+template.BudgetID, err)
	}
	return nil
}

// FindTemplateByID retrieves a budget template by its ID.
func (r *PgxBudgetRepository) FindTemplateByID(ctx context.Context, budgetID string) (*domain.BudgetTemplate, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_templates WHERE budget_id = $1;`

	m, err := scanBudgetTemplate(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget template by ID %s: %w", budgetID, err)
	}

	template := toDomainBudgetTemplate(m)
	return &template, nil
}

// ListTemplates retrieves the active budget templates of a household.
func (r *PgxBudgetRepository) ListTemplates(ctx context.Context, householdID string) ([]domain.BudgetTemplate, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budget_templates
		WHERE household_id = $1 AND is_active = TRUE
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget templates for household %s: %w", householdID, err)
	}
	defer rows.Close()

	templates := []domain.BudgetTemplate{}
	for rows.Next() {
		m, err := scanBudgetTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget template row for household %s: %w", householdID, err)
		}
		templates = append(templates, toDomainBudgetTemplate(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget template rows for household %s: %w", householdID, err)
	}

	return templates, nil
}

// UpdateTemplate updates the monthly amount of a budget template. The category
// binding is immutable.
func (r *PgxBudgetRepository) UpdateTemplate(ctx context.Context, template domain.BudgetTemplate) error {
	query := `
		UPDATE budget_templates
		SET monthly_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE budget_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		template.BudgetID,
		template.MonthlyAmount,
		template.LastUpdatedAt,
		template.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update budget template "+template.BudgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateTemplate marks a budget template as inactive.
func (r *PgxBudgetRepository) DeactivateTemplate(ctx context.Context, budgetID string, userID string, now time.Time) error {
	query := `
		UPDATE budget_templates
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE budget_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, budgetID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate budget template %s: %w", budgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindTemplateByID(ctx, budgetID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: budget template %s is already inactive", apperrors.ErrValidation, budgetID)
	}
	return nil
}

// SumExpenseByCategory returns the absolute expense total per category over
// [monthStart, monthEnd). Categories with no spend are absent from the map.
func (r *PgxBudgetRepository) SumExpenseByCategory(ctx context.Context, householdID string, monthStart, monthEnd time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT e.category_id, COALESCE(SUM(CASE WHEN l.amount < 0 THEN -l.amount ELSE 0 END), 0)
		FROM entries e
		JOIN entry_lines l ON l.entry_id = e.entry_id
		WHERE e.household_id = $1
		  AND e.entry_type = 'EXPENSE'
		  AND e.category_id IS NOT NULL
		  AND e.occurred_at >= $2 AND e.occurred_at < $3
		GROUP BY e.category_id;
	`
	rows, err := r.Pool.Query(ctx, query, householdID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense totals for household %s: %w", householdID, err)
	}
	defer rows.Close()

	totals := map[string]decimal.Decimal{}
	for rows.Next() {
		var categoryID string
		var total decimal.Decimal
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan expense total row for household %s: %w", householdID, err)
		}
		totals[categoryID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense total rows for household %s: %w", householdID, err)
	}

	return totals, nil
}
