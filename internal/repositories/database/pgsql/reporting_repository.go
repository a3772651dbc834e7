package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for read-time aggregations.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepositoryFacade {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepositoryFacade = (*PgxReportingRepository)(nil)

// MonthlySummary aggregates a household's entries over [monthStart, monthEnd).
// Income and expense are summed from the positive and negative line sides so
// the figures agree with a closing computed over the same window.
func (r *PgxReportingRepository) MonthlySummary(ctx context.Context, householdID string, monthStart, monthEnd time.Time) (*domain.MonthlySummary, error) {
	query := `
		SELECT COUNT(DISTINCT e.entry_id),
		       COALESCE(SUM(CASE WHEN e.entry_type = 'INCOME' AND l.amount > 0 THEN l.amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN e.entry_type = 'EXPENSE' AND l.amount < 0 THEN -l.amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN e.entry_type = 'TRANSFER' AND l.amount > 0 THEN l.amount ELSE 0 END), 0)
		FROM entries e
		JOIN entry_lines l ON l.entry_id = e.entry_id
		WHERE e.household_id = $1 AND e.occurred_at >= $2 AND e.occurred_at < $3;
	`
	summary := &domain.MonthlySummary{
		HouseholdID: householdID,
		YearMonth:   monthStart.Format("2006-01"),
	}
	err := r.Pool.QueryRow(ctx, query, householdID, monthStart, monthEnd).Scan(
		&summary.EntryCount,
		&summary.TotalIncome,
		&summary.TotalExpense,
		&summary.TotalTransfer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly summary for household %s: %w", householdID, err)
	}
	summary.NetChange = summary.TotalIncome.Sub(summary.TotalExpense)

	return summary, nil
}

// CategoryBreakdown returns per-category totals over [monthStart, monthEnd),
// largest first. Transfers carry no category and are excluded.
func (r *PgxReportingRepository) CategoryBreakdown(ctx context.Context, householdID string, monthStart, monthEnd time.Time) ([]domain.CategoryTotal, error) {
	query := `
		SELECT c.category_id, c.name, c.category_type,
		       COALESCE(SUM(CASE
		           WHEN e.entry_type = 'INCOME' AND l.amount > 0 THEN l.amount
		           WHEN e.entry_type = 'EXPENSE' AND l.amount < 0 THEN -l.amount
		           ELSE 0 END), 0) AS total
		FROM entries e
		JOIN entry_lines l ON l.entry_id = e.entry_id
		JOIN categories c ON c.category_id = e.category_id
		WHERE e.household_id = $1 AND e.occurred_at >= $2 AND e.occurred_at < $3
		GROUP BY c.category_id, c.name, c.category_type
		ORDER BY total DESC, c.name;
	`
	rows, err := r.Pool.Query(ctx, query, householdID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query category breakdown for household %s: %w", householdID, err)
	}
	defer rows.Close()

	totals := []domain.CategoryTotal{}
	for rows.Next() {
		var t domain.CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.CategoryName, &t.CategoryType, &t.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total row for household %s: %w", householdID, err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category total rows for household %s: %w", householdID, err)
	}

	return totals, nil
}
