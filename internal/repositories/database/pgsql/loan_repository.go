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

type PgxLoanRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxLoanRepository creates a new repository for loan data.
func newPgxLoanRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.LoanRepositoryFacade {
	return &PgxLoanRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

func toModelLoan(d domain.Loan) models.Loan {
	return models.Loan{
		LoanID:                 d.LoanID,
		HouseholdID:            d.HouseholdID,
		Name:                   d.Name,
		PrincipalOriginal:      d.PrincipalOriginal,
		StartDate:              d.StartDate,
		MaturityDate:           d.MaturityDate,
		TermMonths:             d.TermMonths,
		RepaymentType:          models.RepaymentType(d.RepaymentType),
		InterestPayDay:         d.InterestPayDay,
		LinkedPaymentAccountID: d.LinkedPaymentAccountID,
		IsActive:               d.IsActive,
		AuditFields:            mapping.ToModelAuditFields(d.AuditFields),
	}
}

func toDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:                 m.LoanID,
		HouseholdID:            m.HouseholdID,
		Name:                   m.Name,
		PrincipalOriginal:      m.PrincipalOriginal,
		StartDate:              m.StartDate,
		MaturityDate:           m.MaturityDate,
		TermMonths:             m.TermMonths,
		RepaymentType:          domain.RepaymentType(m.RepaymentType),
		InterestPayDay:         m.InterestPayDay,
		LinkedPaymentAccountID: m.LinkedPaymentAccountID,
		IsActive:               m.IsActive,
		AuditFields:            mapping.ToDomainAuditFields(m.AuditFields),
	}
}

func toDomainScheduleEntry(m models.LoanScheduleEntry) domain.LoanScheduleEntry {
	return domain.LoanScheduleEntry{
		ScheduleID:      m.ScheduleID,
		LoanID:          m.LoanID,
		PeriodStart:     m.PeriodStart,
		PeriodEnd:       m.PeriodEnd,
		PostingDate:     m.PostingDate,
		InterestAmount:  m.InterestAmount,
		PrincipalAmount: m.PrincipalAmount,
		FeeAmount:       m.FeeAmount,
		BalanceAfter:    m.BalanceAfter,
		Locked:          m.Locked,
	}
}

const loanColumns = `loan_id, household_id, name, principal_original, start_date, maturity_date, term_months, repayment_type, interest_pay_day, linked_payment_account_id, is_active, created_at, created_by, last_updated_at, last_updated_by`

const scheduleColumns = `schedule_id, loan_id, period_start, period_end, posting_date, interest_amount, principal_amount, fee_amount, balance_after, locked`

func scanLoan(row pgx.Row) (models.Loan, error) {
	var m models.Loan
	err := row.Scan(
		&m.LoanID,
		&m.HouseholdID,
		&m.Name,
		&m.PrincipalOriginal,
		&m.StartDate,
		&m.MaturityDate,
		&m.TermMonths,
		&m.RepaymentType,
		&m.InterestPayDay,
		&m.LinkedPaymentAccountID,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanScheduleEntry(row pgx.Row) (models.LoanScheduleEntry, error) {
	var m models.LoanScheduleEntry
	err := row.Scan(
		&m.ScheduleID,
		&m.LoanID,
		&m.PeriodStart,
		&m.PeriodEnd,
		&m.PostingDate,
		&m.InterestAmount,
		&m.PrincipalAmount,
		&m.FeeAmount,
		&m.BalanceAfter,
		&m.Locked,
	)
	return m, err
}

func queueScheduleInserts(batch *pgx.Batch, schedule []domain.LoanScheduleEntry) {
	query := `
		INSERT INTO loan_schedule_entries (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, s := range schedule {
		batch.Queue(query,
			s.ScheduleID,
			s.LoanID,
			s.PeriodStart,
			s.PeriodEnd,
			s.PostingDate,
			s.InterestAmount,
			s.PrincipalAmount,
			s.FeeAmount,
			s.BalanceAfter,
			s.Locked,
		)
	}
}

// CreateLoanWithSchedule inserts the loan, its initial rate row and the full
// generated schedule in one DB transaction.
func (r *PgxLoanRepository) CreateLoanWithSchedule(ctx context.Context, loan domain.Loan, rate domain.LoanRate, schedule []domain.LoanScheduleEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := toModelLoan(loan)
	loanQuery := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, loanQuery,
		m.LoanID,
		m.HouseholdID,
		m.Name,
		m.PrincipalOriginal,
		m.StartDate,
		m.MaturityDate,
		m.TermMonths,
		m.RepaymentType,
		m.InterestPayDay,
		m.LinkedPaymentAccountID,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: loan %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return apperrors.NewAppError(500, "failed to insert loan "+m.LoanID, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO loan_rate_history (rate_id, loan_id, effective_date, annual_rate)
		VALUES ($1, $2, $3, $4);
	`, rate.RateID, rate.LoanID, rate.EffectiveDate, rate.AnnualRate); err != nil {
		return apperrors.NewAppError(500, "failed to insert initial rate for loan "+m.LoanID, err)
	}

	batch := &pgx.Batch{}
	queueScheduleInserts(batch, schedule)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert schedule for loan "+m.LoanID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit creation of loan "+m.LoanID, err)
	}
	return nil
}

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1;`

	m, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan by ID %s: %w", loanID, err)
	}

	loan := toDomainLoan(m)
	return &loan, nil
}

// ListLoansByHousehold retrieves the loans of a household.
func (r *PgxLoanRepository) ListLoansByHousehold(ctx context.Context, householdID string) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE household_id = $1 ORDER BY start_date;`

	rows, err := r.Pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans for household %s: %w", householdID, err)
	}
	defer rows.Close()

	loans := []domain.Loan{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row for household %s: %w", householdID, err)
		}
		loans = append(loans, toDomainLoan(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan rows for household %s: %w", householdID, err)
	}

	return loans, nil
}

// ListRates retrieves the append-only rate history of a loan, oldest first.
func (r *PgxLoanRepository) ListRates(ctx context.Context, loanID string) ([]domain.LoanRate, error) {
	query := `
		SELECT rate_id, loan_id, effective_date, annual_rate
		FROM loan_rate_history
		WHERE loan_id = $1
		ORDER BY effective_date;
	`
	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	rates := []domain.LoanRate{}
	for rows.Next() {
		var m models.LoanRate
		if err := rows.Scan(&m.RateID, &m.LoanID, &m.EffectiveDate, &m.AnnualRate); err != nil {
			return nil, fmt.Errorf("failed to scan rate row for loan %s: %w", loanID, err)
		}
		rates = append(rates, domain.LoanRate{
			RateID:        m.RateID,
			LoanID:        m.LoanID,
			EffectiveDate: m.EffectiveDate,
			AnnualRate:    m.AnnualRate,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate rows for loan %s: %w", loanID, err)
	}

	return rates, nil
}

// ListSchedule retrieves the full amortization schedule of a loan, in period order.
func (r *PgxLoanRepository) ListSchedule(ctx context.Context, loanID string) ([]domain.LoanScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM loan_schedule_entries WHERE loan_id = $1 ORDER BY period_start;`

	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	schedule := []domain.LoanScheduleEntry{}
	for rows.Next() {
		m, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row for loan %s: %w", loanID, err)
		}
		schedule = append(schedule, toDomainScheduleEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows for loan %s: %w", loanID, err)
	}

	return schedule, nil
}

// FindScheduleEntryByID retrieves one schedule entry.
func (r *PgxLoanRepository) FindScheduleEntryByID(ctx context.Context, scheduleID string) (*domain.LoanScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM loan_schedule_entries WHERE schedule_id = $1;`

	m, err := scanScheduleEntry(r.Pool.QueryRow(ctx, query, scheduleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find schedule entry by ID %s: %w", scheduleID, err)
	}

	entry := toDomainScheduleEntry(m)
	return &entry, nil
}

// AddRateAndReplaceSchedule appends a rate row and swaps every unlocked schedule
// entry starting at fromDate for the regenerated ones, atomically. Locked
// periods keep their posted figures.
func (r *PgxLoanRepository) AddRateAndReplaceSchedule(ctx context.Context, rate domain.LoanRate, fromDate time.Time, regenerated []domain.LoanScheduleEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO loan_rate_history (rate_id, loan_id, effective_date, annual_rate)
		VALUES ($1, $2, $3, $4);
	`, rate.RateID, rate.LoanID, rate.EffectiveDate, rate.AnnualRate); err != nil {
		return apperrors.NewAppError(500, "failed to insert rate for loan "+rate.LoanID, err)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM loan_schedule_entries
		WHERE loan_id = $1 AND locked = FALSE AND period_start >= $2;
	`, rate.LoanID, fromDate); err != nil {
		return apperrors.NewAppError(500, "failed to drop unlocked schedule for loan "+rate.LoanID, err)
	}

	batch := &pgx.Batch{}
	queueScheduleInserts(batch, regenerated)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert regenerated schedule for loan "+rate.LoanID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit rate change for loan "+rate.LoanID, err)
	}
	return nil
}

// PostLoanPayment marks a schedule entry locked and posts its ledger entry in
// one DB transaction. A period that is already locked yields ErrConflict.
func (r *PgxLoanRepository) PostLoanPayment(ctx context.Context, scheduleID string, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE loan_schedule_entries
		SET locked = TRUE
		WHERE schedule_id = $1 AND locked = FALSE;
	`, scheduleID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock schedule entry "+scheduleID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindScheduleEntryByID(ctx, scheduleID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: schedule entry %s is already posted", apperrors.ErrConflict, scheduleID)
	}

	if err := insertEntryTx(ctx, tx, r.accountRepo, entry, lines, balanceChanges); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit loan payment for schedule entry "+scheduleID, err)
	}
	return nil
}

// DeactivateLoan marks a loan as inactive.
func (r *PgxLoanRepository) DeactivateLoan(ctx context.Context, loanID string, userID string, now time.Time) error {
	query := `
		UPDATE loans
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE loan_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, loanID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate loan %s: %w", loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindLoanByID(ctx, loanID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: loan %s is already inactive", apperrors.ErrValidation, loanID)
	}
	return nil
}
