package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	"github.com/hearthsoft/household_ledger_app/internal/models"
	"github.com/hearthsoft/household_ledger_app/internal/utils/accounting"
	"github.com/hearthsoft/household_ledger_app/internal/utils/mapping"
	"github.com/hearthsoft/household_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxInvestmentRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxInvestmentRepository creates a new repository for investment data.
func newPgxInvestmentRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.InvestmentRepositoryFacade {
	return &PgxInvestmentRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.InvestmentRepositoryFacade = (*PgxInvestmentRepository)(nil)

func toDomainSecurity(m models.Security) domain.Security {
	return domain.Security{
		SecurityID:         m.SecurityID,
		HouseholdID:        m.HouseholdID,
		Ticker:             m.Ticker,
		Name:               m.Name,
		Market:             m.Market,
		LastPrice:          m.LastPrice,
		LastPriceUpdatedAt: m.LastPriceUpdatedAt,
		AuditFields:        mapping.ToDomainAuditFields(m.AuditFields),
	}
}

func toDomainHolding(m models.Holding) domain.Holding {
	return domain.Holding{
		HoldingID:   m.HoldingID,
		SecurityID:  m.SecurityID,
		AccountID:   m.AccountID,
		Quantity:    m.Quantity,
		AvgPrice:    m.AvgPrice,
		AuditFields: mapping.ToDomainAuditFields(m.AuditFields),
	}
}

func toDomainTrade(m models.Trade) domain.Trade {
	return domain.Trade{
		TradeID:     m.TradeID,
		HouseholdID: m.HouseholdID,
		SecurityID:  m.SecurityID,
		AccountID:   m.AccountID,
		TradeType:   domain.TradeType(m.TradeType),
		Quantity:    m.Quantity,
		Price:       m.Price,
		Fee:         m.Fee,
		OccurredAt:  m.OccurredAt,
		EntryID:     m.EntryID,
		AuditFields: mapping.ToDomainAuditFields(m.AuditFields),
	}
}

const securityColumns = `security_id, household_id, ticker, name, market, last_price, last_price_updated_at, created_at, created_by, last_updated_at, last_updated_by`

const tradeColumns = `trade_id, household_id, security_id, account_id, trade_type, quantity, price, fee, occurred_at, entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanSecurity(row pgx.Row) (models.Security, error) {
	var m models.Security
	err := row.Scan(
		&m.SecurityID,
		&m.HouseholdID,
		&m.Ticker,
		&m.Name,
		&m.Market,
		&m.LastPrice,
		&m.LastPriceUpdatedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanTrade(row pgx.Row) (models.Trade, error) {
	var m models.Trade
	err := row.Scan(
		&m.TradeID,
		&m.HouseholdID,
		&m.SecurityID,
		&m.AccountID,
		&m.TradeType,
		&m.Quantity,
		&m.Price,
		&m.Fee,
		&m.OccurredAt,
		&m.EntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// RecordTrade persists a trade, its holding effect and its balanced ledger
// entry in one DB transaction. The holding row is locked for the duration so
// concurrent trades on the same position serialize.
func (r *PgxInvestmentRepository) RecordTrade(ctx context.Context, req portsrepo.TradeRequest) (*domain.Trade, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	sec := req.Security
	var securityID string
	// The no-op DO UPDATE lets RETURNING yield the existing row's ID on conflict.
	err = tx.QueryRow(ctx, `
		INSERT INTO securities (`+securityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (household_id, ticker) DO UPDATE SET ticker = EXCLUDED.ticker
		RETURNING security_id;
	`,
		sec.SecurityID,
		sec.HouseholdID,
		sec.Ticker,
		sec.Name,
		sec.Market,
		sec.LastPrice,
		sec.LastPriceUpdatedAt,
		sec.CreatedAt,
		sec.CreatedBy,
		sec.LastUpdatedAt,
		sec.LastUpdatedBy,
	).Scan(&securityID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to upsert security "+sec.Ticker, err)
	}

	trade := req.Trade
	trade.SecurityID = securityID

	if err := applyTradeToHoldingTx(ctx, tx, trade); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`,
		trade.TradeID,
		trade.HouseholdID,
		trade.SecurityID,
		trade.AccountID,
		trade.TradeType,
		trade.Quantity,
		trade.Price,
		trade.Fee,
		trade.OccurredAt,
		trade.EntryID,
		trade.CreatedAt,
		trade.CreatedBy,
		trade.LastUpdatedAt,
		trade.LastUpdatedBy,
	); err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert trade "+trade.TradeID, err)
	}

	if err := insertEntryTx(ctx, tx, r.accountRepo, req.Entry, req.Lines, req.BalanceChanges); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit trade "+trade.TradeID, err)
	}
	return &trade, nil
}

// applyTradeToHoldingTx locks the position and applies the weighted-average
// cost rules via accounting.ApplyTrade. The fee never enters the average; it
// is carried on the entry's cash line.
func applyTradeToHoldingTx(ctx context.Context, tx pgx.Tx, trade domain.Trade) error {
	var holdingID string
	position := accounting.Position{Quantity: decimal.Zero, AvgPrice: decimal.Zero}
	err := tx.QueryRow(ctx, `
		SELECT holding_id, quantity, avg_price
		FROM holdings
		WHERE security_id = $1 AND account_id = $2
		FOR UPDATE;
	`, trade.SecurityID, trade.AccountID).Scan(&holdingID, &position.Quantity, &position.AvgPrice)

	exists := true
	if errors.Is(err, pgx.ErrNoRows) {
		exists = false
		position = accounting.Position{Quantity: decimal.Zero, AvgPrice: decimal.Zero}
	} else if err != nil {
		return apperrors.NewAppError(500, "failed to lock holding for security "+trade.SecurityID, err)
	}

	updated, err := accounting.ApplyTrade(position, trade.TradeType, trade.Quantity, trade.Price)
	if err != nil {
		return err
	}

	if exists {
		if _, err := tx.Exec(ctx, `
			UPDATE holdings
			SET quantity = $2, avg_price = $3, last_updated_at = $4, last_updated_by = $5
			WHERE holding_id = $1;
		`, holdingID, updated.Quantity, updated.AvgPrice, trade.LastUpdatedAt, trade.LastUpdatedBy); err != nil {
			return apperrors.NewAppError(500, "failed to update holding "+holdingID, err)
		}
		return nil
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO holdings (holding_id, security_id, account_id, quantity, avg_price, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`, uuid.New().String(), trade.SecurityID, trade.AccountID, updated.Quantity, updated.AvgPrice,
		trade.CreatedAt, trade.CreatedBy, trade.LastUpdatedAt, trade.LastUpdatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to insert holding for security "+trade.SecurityID, err)
	}
	return nil
}

// SaveSecurity registers a security in the household's catalog.
func (r *PgxInvestmentRepository) SaveSecurity(ctx context.Context, security domain.Security) error {
	query := `
		INSERT INTO securities (` + securityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		security.SecurityID,
		security.HouseholdID,
		security.Ticker,
		security.Name,
		security.Market,
		security.LastPrice,
		security.LastPriceUpdatedAt,
		security.CreatedAt,
		security.CreatedBy,
		security.LastUpdatedAt,
		security.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ticker %s is already registered", apperrors.ErrDuplicate, security.Ticker)
		}
		return apperrors.NewAppError(500, "failed to insert security "+security.SecurityID, err)
	}
	return nil
}

// FindSecurityByID retrieves a security by its ID.
func (r *PgxInvestmentRepository) FindSecurityByID(ctx context.Context, securityID string) (*domain.Security, error) {
	query := `SELECT ` + securityColumns + ` FROM securities WHERE security_id = $1;`

	m, err := scanSecurity(r.Pool.QueryRow(ctx, query, securityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find security by ID %s: %w", securityID, err)
	}

	sec := toDomainSecurity(m)
	return &sec, nil
}

// FindSecurityByTicker retrieves a security by its household-scoped ticker.
func (r *PgxInvestmentRepository) FindSecurityByTicker(ctx context.Context, householdID string, ticker string) (*domain.Security, error) {
	query := `SELECT ` + securityColumns + ` FROM securities WHERE household_id = $1 AND ticker = $2;`

	m, err := scanSecurity(r.Pool.QueryRow(ctx, query, householdID, ticker))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find security %s: %w", ticker, err)
	}

	sec := toDomainSecurity(m)
	return &sec, nil
}

// ListSecurities retrieves all securities of a household.
func (r *PgxInvestmentRepository) ListSecurities(ctx context.Context, householdID string) ([]domain.Security, error) {
	query := `SELECT ` + securityColumns + ` FROM securities WHERE household_id = $1 ORDER BY ticker;`

	rows, err := r.Pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query securities for household %s: %w", householdID, err)
	}
	defer rows.Close()

	securities := []domain.Security{}
	for rows.Next() {
		m, err := scanSecurity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security row for household %s: %w", householdID, err)
		}
		securities = append(securities, toDomainSecurity(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security rows for household %s: %w", householdID, err)
	}

	return securities, nil
}

// ListHoldings retrieves the holdings of a household's securities.
func (r *PgxInvestmentRepository) ListHoldings(ctx context.Context, householdID string) ([]domain.Holding, error) {
	query := `
		SELECT h.holding_id, h.security_id, h.account_id, h.quantity, h.avg_price,
		       h.created_at, h.created_by, h.last_updated_at, h.last_updated_by
		FROM holdings h
		JOIN securities s ON s.security_id = h.security_id
		WHERE s.household_id = $1
		ORDER BY s.ticker, h.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings for household %s: %w", householdID, err)
	}
	defer rows.Close()

	holdings := []domain.Holding{}
	for rows.Next() {
		var m models.Holding
		if err := rows.Scan(
			&m.HoldingID,
			&m.SecurityID,
			&m.AccountID,
			&m.Quantity,
			&m.AvgPrice,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan holding row for household %s: %w", householdID, err)
		}
		holdings = append(holdings, toDomainHolding(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding rows for household %s: %w", householdID, err)
	}

	return holdings, nil
}

// FindHolding retrieves the position of one security in one account.
func (r *PgxInvestmentRepository) FindHolding(ctx context.Context, securityID string, accountID string) (*domain.Holding, error) {
	query := `
		SELECT holding_id, security_id, account_id, quantity, avg_price, created_at, created_by, last_updated_at, last_updated_by
		FROM holdings
		WHERE security_id = $1 AND account_id = $2;
	`
	var m models.Holding
	err := r.Pool.QueryRow(ctx, query, securityID, accountID).Scan(
		&m.HoldingID,
		&m.SecurityID,
		&m.AccountID,
		&m.Quantity,
		&m.AvgPrice,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find holding for security %s: %w", securityID, err)
	}

	holding := toDomainHolding(m)
	return &holding, nil
}

// ListTrades retrieves a household's trades, newest first, token-paginated.
func (r *PgxInvestmentRepository) ListTrades(ctx context.Context, householdID string, limit int, nextToken *string) ([]domain.Trade, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + tradeColumns + ` FROM trades WHERE household_id = $1`
	args := []interface{}{householdID}

	if nextToken != nil && *nextToken != "" {
		occurredAt, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += ` AND (occurred_at, created_at) < ($2, $3)`
		args = append(args, occurredAt, createdAt)
	}

	query += fmt.Sprintf(` ORDER BY occurred_at DESC, created_at DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query trades for household %s: %w", householdID, err)
	}
	defer rows.Close()

	trades := []domain.Trade{}
	for rows.Next() {
		m, err := scanTrade(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan trade row for household %s: %w", householdID, err)
		}
		trades = append(trades, toDomainTrade(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating trade rows for household %s: %w", householdID, err)
	}

	var newNextToken *string
	if len(trades) > limit {
		trades = trades[:limit]
		last := trades[limit-1]
		token := pagination.EncodeToken(last.OccurredAt, last.CreatedAt)
		newNextToken = &token
	}

	return trades, newNextToken, nil
}

// UpdatePrices applies mark-to-market price updates. Only the price fields change.
func (r *PgxInvestmentRepository) UpdatePrices(ctx context.Context, updates []portsrepo.PriceUpdate, now time.Time) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE securities
			SET last_price = $2, last_price_updated_at = $3
			WHERE security_id = $1;
		`, u.SecurityID, u.Price, now)
	}

	br := r.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, u := range updates {
		cmdTag, err := br.Exec()
		if err != nil {
			return apperrors.NewAppError(500, "failed to update price for security "+u.SecurityID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: security %s", apperrors.ErrNotFound, u.SecurityID)
		}
	}
	return nil
}

// UpsertSnapshots writes the valuation snapshot rows for a date. Re-running the
// snapshot for the same date overwrites rather than duplicates.
func (r *PgxInvestmentRepository) UpsertSnapshots(ctx context.Context, snapshots []domain.HoldingSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range snapshots {
		batch.Queue(`
			INSERT INTO holding_snapshots (snapshot_id, household_id, snapshot_date, security_id, quantity, avg_price, last_price, valuation)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (household_id, snapshot_date, security_id) DO UPDATE
			SET quantity = EXCLUDED.quantity,
			    avg_price = EXCLUDED.avg_price,
			    last_price = EXCLUDED.last_price,
			    valuation = EXCLUDED.valuation;
		`, s.SnapshotID, s.HouseholdID, s.SnapshotDate, s.SecurityID, s.Quantity, s.AvgPrice, s.LastPrice, s.Valuation)
	}

	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to upsert holding snapshots", err)
	}
	return nil
}

// ListSnapshots retrieves the snapshot rows of a household for one date.
func (r *PgxInvestmentRepository) ListSnapshots(ctx context.Context, householdID string, snapshotDate time.Time) ([]domain.HoldingSnapshot, error) {
	query := `
		SELECT hs.snapshot_id, hs.household_id, hs.snapshot_date, hs.security_id, hs.quantity, hs.avg_price, hs.last_price, hs.valuation
		FROM holding_snapshots hs
		JOIN securities s ON s.security_id = hs.security_id
		WHERE hs.household_id = $1 AND hs.snapshot_date = $2
		ORDER BY s.ticker;
	`
	rows, err := r.Pool.Query(ctx, query, householdID, snapshotDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for household %s: %w", householdID, err)
	}
	defer rows.Close()

	snapshots := []domain.HoldingSnapshot{}
	for rows.Next() {
		var s domain.HoldingSnapshot
		if err := rows.Scan(
			&s.SnapshotID,
			&s.HouseholdID,
			&s.SnapshotDate,
			&s.SecurityID,
			&s.Quantity,
			&s.AvgPrice,
			&s.LastPrice,
			&s.Valuation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row for household %s: %w", householdID, err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows for household %s: %w", householdID, err)
	}

	return snapshots, nil
}
