package services

import (
	"context"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// SecuritySvc defines operations for the household's security catalog
type SecuritySvc interface {
	// CreateSecurity registers a tradable instrument. Tickers are unique per household.
	CreateSecurity(ctx context.Context, householdID string, req dto.CreateSecurityRequest, creatorUserID string) (*domain.Security, error)

	// ListSecurities retrieves the securities of a household.
	ListSecurities(ctx context.Context, householdID string, requestingUserID string) ([]domain.Security, error)

	// UpdatePrices sets the last known market price of several securities.
	// Prices never touch holdings' average cost.
	UpdatePrices(ctx context.Context, householdID string, req dto.UpdatePricesRequest, requestingUserID string) error
}

// TradeSvc defines operations for recording and listing trades
type TradeSvc interface {
	// RecordTrade records a buy or sell: it adjusts the weighted-average-cost
	// holding and posts the balanced ledger entry in one transaction. Buys move
	// the average price; sells only reduce quantity and may not exceed it.
	RecordTrade(ctx context.Context, householdID string, req dto.RecordTradeRequest, creatorUserID string) (*domain.Trade, error)

	// ListTrades retrieves recorded trades, newest first.
	ListTrades(ctx context.Context, householdID string, requestingUserID string, params dto.ListTradesParams) ([]domain.Trade, error)
}

// HoldingSvc defines read and snapshot operations for holdings
type HoldingSvc interface {
	// ListHoldings retrieves the household's open positions with valuations.
	ListHoldings(ctx context.Context, householdID string, requestingUserID string) ([]dto.HoldingResponse, error)

	// SnapshotHoldings captures a per-security valuation as of a date,
	// idempotently upserting on (household, date, security).
	SnapshotHoldings(ctx context.Context, householdID string, req dto.SnapshotHoldingsRequest, requestingUserID string) ([]domain.HoldingSnapshot, error)

	// ListSnapshots retrieves the snapshots taken on a date.
	ListSnapshots(ctx context.Context, householdID string, requestingUserID string, dateStr string) ([]domain.HoldingSnapshot, error)
}

// InvestmentSvcFacade combines all investment-related service interfaces
type InvestmentSvcFacade interface {
	SecuritySvc
	TradeSvc
	HoldingSvc
}
