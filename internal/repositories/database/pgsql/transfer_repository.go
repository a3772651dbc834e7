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

type PgxTransferRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransferRepository creates a new repository for transfer rules and instances.
func newPgxTransferRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransferRepositoryFacade {
	return &PgxTransferRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)

func toModelTransferRule(d domain.TransferRule) models.TransferRule {
	return models.TransferRule{
		RuleID:         d.RuleID,
		HouseholdID:    d.HouseholdID,
		Name:           d.Name,
		FromAccountID:  d.FromAccountID,
		ToAccountID:    d.ToAccountID,
		AmountExpected: d.AmountExpected,
		DayOfMonth:     d.DayOfMonth,
		IsActive:       d.IsActive,
		AuditFields:    mapping.ToModelAuditFields(d.AuditFields),
	}
}

func toDomainTransferRule(m models.TransferRule) domain.TransferRule {
	return domain.TransferRule{
		RuleID:         m.RuleID,
		HouseholdID:    m.HouseholdID,
		Name:           m.Name,
		FromAccountID:  m.FromAccountID,
		ToAccountID:    m.ToAccountID,
		AmountExpected: m.AmountExpected,
		DayOfMonth:     m.DayOfMonth,
		IsActive:       m.IsActive,
		AuditFields:    mapping.ToDomainAuditFields(m.AuditFields),
	}
}

func toDomainTransferInstance(m models.TransferInstance) domain.TransferInstance {
	return domain.TransferInstance{
		InstanceID:       m.InstanceID,
		RuleID:           m.RuleID,
		DueDate:          m.DueDate,
		ExpectedAmount:   m.ExpectedAmount,
		Status:           domain.TransferInstanceStatus(m.Status),
		ConfirmedAt:      m.ConfirmedAt,
		GeneratedEntryID: m.GeneratedEntryID,
		AuditFields:      mapping.ToDomainAuditFields(m.AuditFields),
	}
}

const transferRuleColumns = `rule_id, household_id, name, from_account_id, to_account_id, amount_expected, day_of_month, is_active, created_at, created_by, last_updated_at, last_updated_by`

const transferInstanceColumns = `instance_id, rule_id, due_date, expected_amount, status, confirmed_at, generated_entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanTransferRule(row pgx.Row) (models.TransferRule, error) {
	var m models.TransferRule
	err := row.Scan(
		&m.RuleID,
		&m.HouseholdID,
		&m.Name,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.AmountExpected,
		&m.DayOfMonth,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanTransferInstance(row pgx.Row) (models.TransferInstance, error) {
	var m models.TransferInstance
	err := row.Scan(
		&m.InstanceID,
		&m.RuleID,
		&m.DueDate,
		&m.ExpectedAmount,
		&m.Status,
		&m.ConfirmedAt,
		&m.GeneratedEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveRule inserts a new transfer rule.
func (r *PgxTransferRepository) SaveRule(ctx context.Context, rule domain.TransferRule) error {
	m := toModelTransferRule(rule)

	query := `
		INSERT INTO transfer_rules (` + transferRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RuleID,
		m.HouseholdID,
		m.Name,
		m.FromAccountID,
		m.ToAccountID,
		m.AmountExpected,
		m.DayOfMonth,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transfer rule %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to save transfer rule %s: %w", m.RuleID, err)
	}
	return nil
}

// FindRuleByID retrieves a transfer rule by its ID.
func (r *PgxTransferRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.TransferRule, error) {
	query := `SELECT ` + transferRuleColumns + ` FROM transfer_rules WHERE rule_id = $1;`

	m, err := scanTransferRule(r.Pool.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer rule by ID %s: %w", ruleID, err)
	}

	rule := toDomainTransferRule(m)
	return &rule, nil
}

// ListRulesByHousehold retrieves the transfer rules of a household.
func (r *PgxTransferRepository) ListRulesByHousehold(ctx context.Context, householdID string) ([]domain.TransferRule, error) {
	query := `SELECT ` + transferRuleColumns + ` FROM transfer_rules WHERE household_id = $1 ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer rules for household %s: %w", householdID, err)
	}
	defer rows.Close()

	rules := []domain.TransferRule{}
	for rows.Next() {
		m, err := scanTransferRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer rule row for household %s: %w", householdID, err)
		}
		rules = append(rules, toDomainTransferRule(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer rule rows for household %s: %w", householdID, err)
	}

	return rules, nil
}

// ListActiveRules returns every active rule across all households. Used by the scheduler.
func (r *PgxTransferRepository) ListActiveRules(ctx context.Context) ([]domain.TransferRule, error) {
	query := `SELECT ` + transferRuleColumns + ` FROM transfer_rules WHERE is_active = TRUE ORDER BY rule_id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active transfer rules: %w", err)
	}
	defer rows.Close()

	rules := []domain.TransferRule{}
	for rows.Next() {
		m, err := scanTransferRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active transfer rule row: %w", err)
		}
		rules = append(rules, toDomainTransferRule(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active transfer rule rows: %w", err)
	}

	return rules, nil
}

// UpdateRule updates rule details.
func (r *PgxTransferRepository) UpdateRule(ctx context.Context, rule domain.TransferRule) error {
	m := toModelTransferRule(rule)

	// from/to accounts are immutable; create a new rule to redirect a transfer.
	query := `
		UPDATE transfer_rules
		SET name = $2, amount_expected = $3, day_of_month = $4, is_active = $5, last_updated_at = $6, last_updated_by = $7
		WHERE rule_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.RuleID,
		m.Name,
		m.AmountExpected,
		m.DayOfMonth,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update transfer rule %s: %w", m.RuleID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateRule stops future instance generation for a rule.
func (r *PgxTransferRepository) DeactivateRule(ctx context.Context, ruleID string, userID string, now time.Time) error {
	query := `
		UPDATE transfer_rules
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE rule_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, ruleID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate transfer rule %s: %w", ruleID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindRuleByID(ctx, ruleID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: transfer rule %s is already inactive", apperrors.ErrValidation, ruleID)
	}
	return nil
}

// FindInstanceByID retrieves a transfer instance by its ID.
func (r *PgxTransferRepository) FindInstanceByID(ctx context.Context, instanceID string) (*domain.TransferInstance, error) {
	query := `SELECT ` + transferInstanceColumns + ` FROM transfer_instances WHERE instance_id = $1;`

	m, err := scanTransferInstance(r.Pool.QueryRow(ctx, query, instanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer instance by ID %s: %w", instanceID, err)
	}

	instance := toDomainTransferInstance(m)
	return &instance, nil
}

// ListInstancesByHousehold retrieves the instances of a household's rules,
// optionally filtered by status, newest due first.
func (r *PgxTransferRepository) ListInstancesByHousehold(ctx context.Context, householdID string, status *domain.TransferInstanceStatus) ([]domain.TransferInstance, error) {
	query := `
		SELECT i.instance_id, i.rule_id, i.due_date, i.expected_amount, i.status, i.confirmed_at, i.generated_entry_id,
		       i.created_at, i.created_by, i.last_updated_at, i.last_updated_by
		FROM transfer_instances i
		JOIN transfer_rules r ON i.rule_id = r.rule_id
		WHERE r.household_id = $1
	`
	args := []interface{}{householdID}
	if status != nil {
		query += ` AND i.status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY i.due_date DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer instances for household %s: %w", householdID, err)
	}
	defer rows.Close()

	instances := []domain.TransferInstance{}
	for rows.Next() {
		m, err := scanTransferInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer instance row for household %s: %w", householdID, err)
		}
		instances = append(instances, toDomainTransferInstance(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer instance rows for household %s: %w", householdID, err)
	}

	return instances, nil
}

// FindLatestDueDate returns the most recent materialized due date for a rule.
func (r *PgxTransferRepository) FindLatestDueDate(ctx context.Context, ruleID string) (*time.Time, error) {
	var due *time.Time
	err := r.Pool.QueryRow(ctx,
		`SELECT MAX(due_date) FROM transfer_instances WHERE rule_id = $1;`,
		ruleID,
	).Scan(&due)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest due date for rule %s: %w", ruleID, err)
	}
	return due, nil
}

// SaveInstance inserts a pending instance. A duplicate (rule_id, due_date) is
// silently skipped so repeated materialization runs stay idempotent.
func (r *PgxTransferRepository) SaveInstance(ctx context.Context, instance domain.TransferInstance) error {
	query := `
		INSERT INTO transfer_instances (` + transferInstanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (rule_id, due_date) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		instance.InstanceID,
		instance.RuleID,
		instance.DueDate,
		instance.ExpectedAmount,
		string(instance.Status),
		instance.ConfirmedAt,
		instance.GeneratedEntryID,
		instance.CreatedAt,
		instance.CreatedBy,
		instance.LastUpdatedAt,
		instance.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transfer instance %s: %w", instance.InstanceID, err)
	}
	return nil
}

// ConfirmInstance atomically flips a PENDING instance to CONFIRMED and posts the
// generated transfer entry. The status guard in the UPDATE's WHERE clause makes
// a second confirm lose the race and surface ErrConflict.
func (r *PgxTransferRepository) ConfirmInstance(ctx context.Context, instance domain.TransferInstance, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE transfer_instances
		SET status = 'CONFIRMED', confirmed_at = $2, generated_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE instance_id = $1 AND status = 'PENDING';
	`, instance.InstanceID, instance.ConfirmedAt, entry.EntryID, entry.CreatedAt, entry.CreatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to confirm transfer instance "+instance.InstanceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		existing, findErr := r.FindInstanceByID(ctx, instance.InstanceID)
		if findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: transfer instance %s is already %s", apperrors.ErrConflict, instance.InstanceID, existing.Status)
	}

	if err := insertEntryTx(ctx, tx, r.accountRepo, entry, lines, balanceChanges); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit confirmation of instance "+instance.InstanceID, err)
	}
	return nil
}

// SkipInstance flips a PENDING instance to SKIPPED.
func (r *PgxTransferRepository) SkipInstance(ctx context.Context, instanceID string, userID string, now time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE transfer_instances
		SET status = 'SKIPPED', last_updated_at = $2, last_updated_by = $3
		WHERE instance_id = $1 AND status = 'PENDING';
	`, instanceID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to skip transfer instance %s: %w", instanceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		existing, findErr := r.FindInstanceByID(ctx, instanceID)
		if findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: transfer instance %s is already %s", apperrors.ErrConflict, instanceID, existing.Status)
	}
	return nil
}

// MarkMissedBefore marks PENDING instances due before the cutoff as MISSED.
func (r *PgxTransferRepository) MarkMissedBefore(ctx context.Context, cutoff time.Time, now time.Time) (int, error) {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE transfer_instances
		SET status = 'MISSED', last_updated_at = $2
		WHERE status = 'PENDING' AND due_date < $1;
	`, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark missed transfer instances: %w", err)
	}
	return int(cmdTag.RowsAffected()), nil
}
