package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	"github.com/hearthsoft/household_ledger_app/internal/models"
	"github.com/hearthsoft/household_ledger_app/internal/utils/mapping"
	"github.com/hearthsoft/household_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxEntryRepository creates a new repository for ledger entry and line data.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepositoryWithTx
var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

const entryColumns = `entry_id, household_id, occurred_at, entry_type, category_id, memo, source, is_locked, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, amount, memo, created_at, created_by, last_updated_at, last_updated_by, running_balance`

func scanEntry(row pgx.Row) (models.Entry, error) {
	var m models.Entry
	err := row.Scan(
		&m.EntryID,
		&m.HouseholdID,
		&m.OccurredAt,
		&m.EntryType,
		&m.CategoryID,
		&m.Memo,
		&m.Source,
		&m.IsLocked,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanLine(row pgx.Row) (models.Line, error) {
	var m models.Line
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountID,
		&m.Amount,
		&m.Memo,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.RunningBalance,
	)
	return m, err
}

// insertEntryTx inserts an entry with its lines and applies balance deltas inside
// the caller's transaction. It locks the affected accounts, computes each line's
// running balance from the locked state and batches the line inserts. Every flow
// that posts ledger movements (manual entries, transfer confirms, loan payments,
// trades) funnels through here.
func insertEntryTx(ctx context.Context, tx pgx.Tx, accountRepo portsrepo.AccountRepositoryFacade, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal) error {
	now := entry.CreatedAt
	userID := entry.CreatedBy

	m := mapping.ToModelEntry(entry)
	entryQuery := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, entryQuery,
		m.EntryID,
		m.HouseholdID,
		m.OccurredAt,
		m.EntryType,
		m.CategoryID,
		m.Memo,
		m.Source,
		m.IsLocked,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert entry "+m.EntryID, err)
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}

	lockedAccounts, err := accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}

	if err := accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	// Running balances start from the balance before this entry's changes.
	currentRunningBalances := make(map[string]decimal.Decimal)
	for accID, lockedAcc := range lockedAccounts {
		currentRunningBalances[accID] = lockedAcc.Balance
	}

	// Sort by LineID for deterministic running balance order.
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].LineID < lines[j].LineID
	})

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, line := range lines {
		ml := mapping.ToModelLine(line)
		ml.CreatedAt = now
		ml.LastUpdatedAt = now
		ml.CreatedBy = userID
		ml.LastUpdatedBy = userID

		if _, ok := lockedAccounts[line.AccountID]; !ok {
			return apperrors.NewAppError(500, "internal error: locked account "+line.AccountID+" not found during line processing", nil)
		}

		newRunningBalance := currentRunningBalances[line.AccountID].Add(line.Amount)
		ml.RunningBalance = newRunningBalance
		currentRunningBalances[line.AccountID] = newRunningBalance

		batch.Queue(lineQuery,
			ml.LineID,
			ml.EntryID,
			ml.AccountID,
			ml.Amount,
			ml.Memo,
			ml.CreatedAt,
			ml.CreatedBy,
			ml.LastUpdatedAt,
			ml.LastUpdatedBy,
			ml.RunningBalance,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for entry "+m.EntryID, err)
	}

	return nil
}

// SaveEntry persists an entry with its lines and balance updates in one DB transaction.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once committed

	if err := insertEntryTx(ctx, tx, r.accountRepo, entry, lines, balanceChanges); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for entry "+entry.EntryID, err)
	}
	return nil
}

// FindEntryByID retrieves an entry header by its ID.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE entry_id = $1;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}

	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of a specific entry.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.Line, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM entry_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.Line{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}

	return mapping.ToDomainLineSlice(lines), nil
}

// FindLinesByEntryIDs retrieves all lines for a list of entry IDs, grouped by entry.
func (r *PgxEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.Line, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.Line{}, nil
	}

	query := `
		SELECT ` + lineColumns + `
		FROM entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entries", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.Line)
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row during batch fetch", err)
		}
		grouped[m.EntryID] = append(grouped[m.EntryID], mapping.ToDomainLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows during batch fetch", err)
	}

	return grouped, nil
}

// ListEntriesByHousehold retrieves a paginated list of entries using token-based pagination.
func (r *PgxEntryRepository) ListEntriesByHousehold(ctx context.Context, householdID string, filter portsrepo.ListEntriesFilter, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + entryColumns + ` FROM entries`
	filterClause := `WHERE household_id = $1`
	args := []interface{}{householdID}

	if filter.MonthStart != nil && filter.MonthEnd != nil {
		filterClause += ` AND occurred_at >= $` + strconv.Itoa(len(args)+1) + ` AND occurred_at < $` + strconv.Itoa(len(args)+2)
		args = append(args, *filter.MonthStart, *filter.MonthEnd)
	}
	if filter.CategoryID != nil {
		filterClause += ` AND category_id = $` + strconv.Itoa(len(args)+1)
		args = append(args, *filter.CategoryID)
	}
	if filter.EntryType != nil {
		filterClause += ` AND entry_type = $` + strconv.Itoa(len(args)+1)
		args = append(args, string(*filter.EntryType))
	}
	if filter.AccountID != nil {
		filterClause += ` AND entry_id IN (SELECT entry_id FROM entry_lines WHERE account_id = $` + strconv.Itoa(len(args)+1) + `)`
		args = append(args, *filter.AccountID)
	}

	// Ordering must be stable: occurred_at DESC with created_at DESC tie-breaker.
	orderByClause := `ORDER BY occurred_at DESC, created_at DESC`

	if nextToken != nil && *nextToken != "" {
		lastOccurredAt, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		filterClause += ` AND (occurred_at, created_at) < ($` + strconv.Itoa(len(args)+1) + `, $` + strconv.Itoa(len(args)+2) + `)`
		args = append(args, lastOccurredAt, lastCreatedAt)
	}

	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for household "+householdID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.Entry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row for household "+householdID, scanErr)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows for household "+householdID, err)
	}

	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		lastEntry := modelEntries[limit-1] // Last item actually included in this page
		newToken := pagination.EncodeToken(lastEntry.OccurredAt, lastEntry.CreatedAt)
		nextTokenVal = &newToken
		results = modelEntries[:limit]
	}

	domainEntries := make([]domain.Entry, len(results))
	for i, m := range results {
		domainEntries[i] = mapping.ToDomainEntry(m)
	}

	return domainEntries, nextTokenVal, nil
}

// ListLinesByAccountID retrieves a paginated list of one account's lines using
// token-based pagination, newest first.
func (r *PgxEntryRepository) ListLinesByAccountID(ctx context.Context, householdID, accountID string, limit int, nextToken *string) ([]domain.Line, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT l.line_id, l.entry_id, l.account_id, l.amount, l.memo,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, l.running_balance, e.occurred_at
		FROM entry_lines l
		JOIN entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1 AND e.household_id = $2
	`
	orderByClause := `ORDER BY e.occurred_at DESC, l.created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID, householdID}

	if nextToken != nil && *nextToken != "" {
		lastOccurredAt, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause := `AND (e.occurred_at, l.created_at) < ($3, $4)`
		args = append(args, lastOccurredAt, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID, err)
	}
	defer rows.Close()

	type lineWithDate struct {
		line       models.Line
		occurredAt time.Time
	}
	scanned := make([]lineWithDate, 0, fetchLimit)
	for rows.Next() {
		var m models.Line
		var occurredAt time.Time
		scanErr := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.AccountID,
			&m.Amount,
			&m.Memo,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&m.RunningBalance,
			&occurredAt,
		)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan line row for account "+accountID, scanErr)
		}
		scanned = append(scanned, lineWithDate{line: m, occurredAt: occurredAt})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := scanned
	if len(scanned) > limit {
		last := scanned[limit-1]
		token := pagination.EncodeToken(last.occurredAt, last.line.CreatedAt)
		nextTokenVal = &token
		results = scanned[:limit]
	}

	lines := make([]domain.Line, len(results))
	for i, s := range results {
		lines[i] = mapping.ToDomainLine(s.line)
	}

	return lines, nextTokenVal, nil
}

// UpdateEntryHeader updates memo/category/occurred_at of an unlocked entry.
func (r *PgxEntryRepository) UpdateEntryHeader(ctx context.Context, entry domain.Entry) error {
	m := mapping.ToModelEntry(entry)

	query := `
		UPDATE entries
		SET occurred_at = $2, category_id = $3, memo = $4, last_updated_at = $5, last_updated_by = $6
		WHERE entry_id = $1 AND is_locked = FALSE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.EntryID,
		m.OccurredAt,
		m.CategoryID,
		m.Memo,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to execute update entry "+m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the entry doesn't exist or it is locked by a month closing.
		existing, findErr := r.FindEntryByID(ctx, m.EntryID)
		if findErr != nil {
			return findErr
		}
		if existing.IsLocked {
			return fmt.Errorf("%w: entry %s is locked by a month closing", apperrors.ErrConflict, m.EntryID)
		}
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteEntry removes an unlocked entry with its lines and reverses the balance
// deltas, all in one DB transaction.
func (r *PgxEntryRepository) DeleteEntry(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for entry deletion", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entry_lines WHERE entry_id = $1;`, entryID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for entry "+entryID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM entries WHERE entry_id = $1 AND is_locked = FALSE;`, entryID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		existing, findErr := r.FindEntryByID(ctx, entryID)
		if findErr != nil {
			return findErr
		}
		if existing.IsLocked {
			return fmt.Errorf("%w: entry %s is locked by a month closing", apperrors.ErrConflict, entryID)
		}
		return apperrors.ErrNotFound
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to reverse account balances for entry "+entryID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit deletion of entry "+entryID, err)
	}
	return nil
}
