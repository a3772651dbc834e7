package repositories

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PriceUpdate is one mark-to-market price change.
type PriceUpdate struct {
	SecurityID string
	Price      decimal.Decimal
}

// TradeRequest carries everything the repository needs to persist a trade atomically.
type TradeRequest struct {
	Trade          domain.Trade
	Security       domain.Security // Upserted by (household, ticker)
	Entry          domain.Entry
	Lines          []domain.Line
	BalanceChanges map[string]decimal.Decimal
}

// InvestmentRepositoryFacade defines persistence operations for securities,
// holdings, trades and holding snapshots.
type InvestmentRepositoryFacade interface {
	// RecordTrade upserts the security, locks the holding row, applies the
	// validated quantity/avg-price change, inserts the trade and posts the
	// balanced entry, all in one database transaction. A sell exceeding the held
	// quantity fails with apperrors.ErrValidation without writing anything.
	RecordTrade(ctx context.Context, req TradeRequest) (*domain.Trade, error)

	// SaveSecurity registers a security. Tickers are unique per household.
	SaveSecurity(ctx context.Context, security domain.Security) error
	FindSecurityByID(ctx context.Context, securityID string) (*domain.Security, error)
	FindSecurityByTicker(ctx context.Context, householdID string, ticker string) (*domain.Security, error)
	ListSecurities(ctx context.Context, householdID string) ([]domain.Security, error)
	ListHoldings(ctx context.Context, householdID string) ([]domain.Holding, error)
	FindHolding(ctx context.Context, securityID string, accountID string) (*domain.Holding, error)
	ListTrades(ctx context.Context, householdID string, limit int, nextToken *string) ([]domain.Trade, *string, error)

	// UpdatePrices mutates only last_price/last_price_updated_at.
	UpdatePrices(ctx context.Context, updates []PriceUpdate, now time.Time) error

	// UpsertSnapshots writes the per-security snapshot rows for a date,
	// idempotently on (household, date, security).
	UpsertSnapshots(ctx context.Context, snapshots []domain.HoldingSnapshot) error
	ListSnapshots(ctx context.Context, householdID string, snapshotDate time.Time) ([]domain.HoldingSnapshot, error)
}
