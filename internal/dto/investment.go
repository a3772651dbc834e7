package dto

import (
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateSecurityRequest registers a tradable instrument for a household.
type CreateSecurityRequest struct {
	Ticker string `json:"ticker" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Market string `json:"market"`
}

// RecordTradeRequest defines the data needed to record a buy or sell.
type RecordTradeRequest struct {
	SecurityID string           `json:"securityID" binding:"required"`
	AccountID  string           `json:"accountID" binding:"required"`
	TradeType  domain.TradeType `json:"tradeType" binding:"required,oneof=BUY SELL"`
	Quantity   decimal.Decimal  `json:"quantity" binding:"required"`
	Price      decimal.Decimal  `json:"price" binding:"required"`
	Fee        decimal.Decimal  `json:"fee"`
	OccurredAt time.Time        `json:"occurredAt" binding:"required"`
}

// PriceUpdateItem is one security's new market price.
type PriceUpdateItem struct {
	SecurityID string          `json:"securityID" binding:"required"`
	Price      decimal.Decimal `json:"price" binding:"required"`
}

// UpdatePricesRequest updates the last known prices of several securities at once.
type UpdatePricesRequest struct {
	Prices []PriceUpdateItem `json:"prices" binding:"required,min=1,dive"`
}

// SnapshotHoldingsRequest captures per-security valuations as of a date.
type SnapshotHoldingsRequest struct {
	SnapshotDate time.Time `json:"snapshotDate" binding:"required"`
}

// SecurityResponse defines the data returned for a security.
type SecurityResponse struct {
	SecurityID         string          `json:"securityID"`
	HouseholdID        string          `json:"householdID"`
	Ticker             string          `json:"ticker"`
	Name               string          `json:"name"`
	Market             string          `json:"market"`
	LastPrice          decimal.Decimal `json:"lastPrice"`
	LastPriceUpdatedAt *time.Time      `json:"lastPriceUpdatedAt,omitempty"`
}

// HoldingResponse defines the data returned for a holding, with the valuation
// derived from the security's last known price.
type HoldingResponse struct {
	HoldingID      string          `json:"holdingID"`
	SecurityID     string          `json:"securityID"`
	Ticker         string          `json:"ticker"`
	SecurityName   string          `json:"securityName"`
	AccountID      string          `json:"accountID"`
	Quantity       decimal.Decimal `json:"quantity"`
	AvgPrice       decimal.Decimal `json:"avgPrice"`
	LastPrice      decimal.Decimal `json:"lastPrice"`
	CostBasis      decimal.Decimal `json:"costBasis"`
	Valuation      decimal.Decimal `json:"valuation"`
	UnrealizedPnL  decimal.Decimal `json:"unrealizedPnL"`
}

// TradeResponse defines the data returned for a recorded trade.
type TradeResponse struct {
	TradeID     string           `json:"tradeID"`
	HouseholdID string           `json:"householdID"`
	SecurityID  string           `json:"securityID"`
	AccountID   string           `json:"accountID"`
	TradeType   domain.TradeType `json:"tradeType"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Price       decimal.Decimal  `json:"price"`
	Fee         decimal.Decimal  `json:"fee"`
	OccurredAt  time.Time        `json:"occurredAt"`
	EntryID     string           `json:"entryID"`
}

// HoldingSnapshotResponse defines the data returned for a valuation snapshot row.
type HoldingSnapshotResponse struct {
	SnapshotID   string          `json:"snapshotID"`
	SnapshotDate time.Time       `json:"snapshotDate"`
	SecurityID   string          `json:"securityID"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	LastPrice    decimal.Decimal `json:"lastPrice"`
	Valuation    decimal.Decimal `json:"valuation"`
}

// ToSecurityResponse converts a domain.Security to SecurityResponse DTO.
func ToSecurityResponse(s *domain.Security) SecurityResponse {
	return SecurityResponse{
		SecurityID:         s.SecurityID,
		HouseholdID:        s.HouseholdID,
		Ticker:             s.Ticker,
		Name:               s.Name,
		Market:             s.Market,
		LastPrice:          s.LastPrice,
		LastPriceUpdatedAt: s.LastPriceUpdatedAt,
	}
}

// ToListSecurityResponse converts a slice of domain.Security to response DTOs.
func ToListSecurityResponse(securities []domain.Security) []SecurityResponse {
	res := make([]SecurityResponse, len(securities))
	for i, s := range securities {
		res[i] = ToSecurityResponse(&s)
	}
	return res
}

// ToHoldingResponse converts a holding and its security to a HoldingResponse DTO.
func ToHoldingResponse(h *domain.Holding, sec *domain.Security) HoldingResponse {
	costBasis := h.Quantity.Mul(h.AvgPrice)
	valuation := h.Quantity.Mul(sec.LastPrice)
	return HoldingResponse{
		HoldingID:     h.HoldingID,
		SecurityID:    h.SecurityID,
		Ticker:        sec.Ticker,
		SecurityName:  sec.Name,
		AccountID:     h.AccountID,
		Quantity:      h.Quantity,
		AvgPrice:      h.AvgPrice,
		LastPrice:     sec.LastPrice,
		CostBasis:     costBasis,
		Valuation:     valuation,
		UnrealizedPnL: valuation.Sub(costBasis),
	}
}

// ToTradeResponse converts a domain.Trade to TradeResponse DTO.
func ToTradeResponse(t *domain.Trade) TradeResponse {
	return TradeResponse{
		TradeID:     t.TradeID,
		HouseholdID: t.HouseholdID,
		SecurityID:  t.SecurityID,
		AccountID:   t.AccountID,
		TradeType:   t.TradeType,
		Quantity:    t.Quantity,
		Price:       t.Price,
		Fee:         t.Fee,
		OccurredAt:  t.OccurredAt,
		EntryID:     t.EntryID,
	}
}

// ToListTradeResponse converts a slice of domain.Trade to response DTOs.
func ToListTradeResponse(trades []domain.Trade) []TradeResponse {
	res := make([]TradeResponse, len(trades))
	for i, t := range trades {
		res[i] = ToTradeResponse(&t)
	}
	return res
}

// ToListHoldingSnapshotResponse converts a slice of domain.HoldingSnapshot to response DTOs.
func ToListHoldingSnapshotResponse(snapshots []domain.HoldingSnapshot) []HoldingSnapshotResponse {
	res := make([]HoldingSnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		res[i] = HoldingSnapshotResponse{
			SnapshotID:   s.SnapshotID,
			SnapshotDate: s.SnapshotDate,
			SecurityID:   s.SecurityID,
			Quantity:     s.Quantity,
			AvgPrice:     s.AvgPrice,
			LastPrice:    s.LastPrice,
			Valuation:    s.Valuation,
		}
	}
	return res
}

// ListTradesParams defines query parameters for listing trades.
type ListTradesParams struct {
	SecurityID *string `form:"securityID"`
	AccountID  *string `form:"accountID"`
	Limit      int     `form:"limit,default=50"`
	Offset     int     `form:"offset,default=0"`
}
