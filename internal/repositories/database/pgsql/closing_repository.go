package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	"github.com/hearthsoft/household_ledger_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxClosingRepository struct {
	BaseRepository
}

// newPgxClosingRepository creates a new repository for month closing data.
func newPgxClosingRepository(pool *pgxpool.Pool) portsrepo.ClosingRepositoryFacade {
	return &PgxClosingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ClosingRepositoryFacade = (*PgxClosingRepository)(nil)

func toDomainClosing(m models.MonthClosing) (domain.MonthClosing, error) {
	var summary domain.ClosingSummary
	if len(m.SummaryJSON) > 0 {
		if err := json.Unmarshal(m.SummaryJSON, &summary); err != nil {
			return domain.MonthClosing{}, fmt.Errorf("failed to decode closing summary for %s: %w", m.ClosingID, err)
		}
	}
	return domain.MonthClosing{
		ClosingID:   m.ClosingID,
		HouseholdID: m.HouseholdID,
		YearMonth:   m.YearMonth,
		ClosedAt:    m.ClosedAt,
		ClosedBy:    m.ClosedBy,
		Summary:     summary,
	}, nil
}

// CloseMonth performs the closing atomically: it inserts the closing row (the
// unique (household_id, year_month) index rejects a concurrent or repeated
// close), locks every entry in the window, computes the summary and persists it
// on the row. Either everything happens or nothing does.
func (r *PgxClosingRepository) CloseMonth(ctx context.Context, closing domain.MonthClosing, monthStart, monthEnd time.Time) (*domain.MonthClosing, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// Insert first so a duplicate close fails before touching any entry.
	insertQuery := `
		INSERT INTO month_closings (closing_id, household_id, year_month, closed_at, closed_by, summary)
		VALUES ($1, $2, $3, $4, $5, '{}'::jsonb);
	`
	_, err = tx.Exec(ctx, insertQuery,
		closing.ClosingID,
		closing.HouseholdID,
		closing.YearMonth,
		closing.ClosedAt,
		closing.ClosedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: month %s is already closed for household %s", apperrors.ErrDuplicate, closing.YearMonth, closing.HouseholdID)
		}
		return nil, apperrors.NewAppError(500, "failed to insert closing for month "+closing.YearMonth, err)
	}

	lockTag, err := tx.Exec(ctx, `
		UPDATE entries
		SET is_locked = TRUE, last_updated_at = $4, last_updated_by = $5
		WHERE household_id = $1 AND occurred_at >= $2 AND occurred_at < $3 AND is_locked = FALSE;
	`, closing.HouseholdID, monthStart, monthEnd, closing.ClosedAt, closing.ClosedBy)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock entries for month "+closing.YearMonth, err)
	}

	summary, err := aggregateSummaryTx(ctx, tx, closing.HouseholdID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	summary.LockedCount = int(lockTag.RowsAffected())
	summary.ClosedAt = closing.ClosedAt

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to encode closing summary", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE month_closings SET summary = $2 WHERE closing_id = $1;`,
		closing.ClosingID, summaryJSON,
	); err != nil {
		return nil, apperrors.NewAppError(500, "failed to persist closing summary", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit closing for month "+closing.YearMonth, err)
	}

	closing.Summary = *summary
	return &closing, nil
}

// aggregateSummaryTx computes the closing summary over [monthStart, monthEnd).
// Entry volume per type is the sum of the positive line amounts of its entries.
func aggregateSummaryTx(ctx context.Context, tx pgx.Tx, householdID string, monthStart, monthEnd time.Time) (*domain.ClosingSummary, error) {
	summary := &domain.ClosingSummary{}

	aggQuery := `
		SELECT COUNT(DISTINCT e.entry_id),
		       COALESCE(SUM(CASE WHEN e.entry_type = 'INCOME' AND l.amount > 0 THEN l.amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN e.entry_type = 'EXPENSE' AND l.amount < 0 THEN -l.amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN e.entry_type = 'TRANSFER' AND l.amount > 0 THEN l.amount ELSE 0 END), 0)
		FROM entries e
		JOIN entry_lines l ON l.entry_id = e.entry_id
		WHERE e.household_id = $1 AND e.occurred_at >= $2 AND e.occurred_at < $3;
	`
	err := tx.QueryRow(ctx, aggQuery, householdID, monthStart, monthEnd).Scan(
		&summary.EntryCount,
		&summary.TotalIncome,
		&summary.TotalExpense,
		&summary.TotalTransfer,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate closing summary", err)
	}
	summary.NetChange = summary.TotalIncome.Sub(summary.TotalExpense)

	pendingQuery := `
		SELECT COUNT(*)
		FROM transfer_instances i
		JOIN transfer_rules r ON i.rule_id = r.rule_id
		WHERE r.household_id = $1 AND i.status = 'PENDING' AND i.due_date >= $2 AND i.due_date < $3;
	`
	if err := tx.QueryRow(ctx, pendingQuery, householdID, monthStart, monthEnd).Scan(&summary.PendingTransfers); err != nil {
		return nil, apperrors.NewAppError(500, "failed to count pending transfers for closing", err)
	}

	return summary, nil
}

const closingColumns = `closing_id, household_id, year_month, closed_at, closed_by, summary`

func scanClosing(row pgx.Row) (models.MonthClosing, error) {
	var m models.MonthClosing
	err := row.Scan(
		&m.ClosingID,
		&m.HouseholdID,
		&m.YearMonth,
		&m.ClosedAt,
		&m.ClosedBy,
		&m.SummaryJSON,
	)
	return m, err
}

// FindClosingByMonth retrieves the closing record of a month, if any.
func (r *PgxClosingRepository) FindClosingByMonth(ctx context.Context, householdID string, yearMonth string) (*domain.MonthClosing, error) {
	query := `SELECT ` + closingColumns + ` FROM month_closings WHERE household_id = $1 AND year_month = $2;`

	m, err := scanClosing(r.Pool.QueryRow(ctx, query, householdID, yearMonth))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find closing for month "+yearMonth, err)
	}

	closing, err := toDomainClosing(m)
	if err != nil {
		return nil, err
	}
	return &closing, nil
}

// ListClosings retrieves all closing records of a household, newest first.
func (r *PgxClosingRepository) ListClosings(ctx context.Context, householdID string) ([]domain.MonthClosing, error) {
	query := `SELECT ` + closingColumns + ` FROM month_closings WHERE household_id = $1 ORDER BY year_month DESC;`

	rows, err := r.Pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query closings for household "+householdID, err)
	}
	defer rows.Close()

	closings := []domain.MonthClosing{}
	for rows.Next() {
		m, err := scanClosing(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan closing row for household "+householdID, err)
		}
		closing, convErr := toDomainClosing(m)
		if convErr != nil {
			return nil, convErr
		}
		closings = append(closings, closing)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating closing rows for household "+householdID, err)
	}

	return closings, nil
}

// HasClosingForDate reports whether the month containing the given date is closed.
func (r *PgxClosingRepository) HasClosingForDate(ctx context.Context, householdID string, date time.Time) (bool, error) {
	yearMonth := date.Format("2006-01")

	var exists bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM month_closings WHERE household_id = $1 AND year_month = $2);`,
		householdID, yearMonth,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check closing for date", err)
	}
	return exists, nil
}
