package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the direction of a trade.
type TradeType string

const (
	Buy  TradeType = "BUY"
	Sell TradeType = "SELL"
)

// Security mirrors the securities table.
type Security struct {
	SecurityID         string          `json:"securityID"`
	HouseholdID        string          `json:"householdID"`
	Ticker             string          `json:"ticker"`
	Name               string          `json:"name"`
	Market             string          `json:"market"`
	LastPrice          decimal.Decimal `json:"lastPrice"`
	LastPriceUpdatedAt *time.Time      `json:"lastPriceUpdatedAt,omitempty"`
	AuditFields
}

// Holding mirrors the holdings table.
type Holding struct {
	HoldingID  string          `json:"holdingID"`
	SecurityID string          `json:"securityID"`
	AccountID  string          `json:"accountID"`
	Quantity   decimal.Decimal `json:"quantity"`
	AvgPrice   decimal.Decimal `json:"avgPrice"`
	AuditFields
}

// Trade mirrors the trades table.
type Trade struct {
	TradeID     string          `json:"tradeID"`
	HouseholdID string          `json:"householdID"`
	SecurityID  string          `json:"securityID"`
	AccountID   string          `json:"accountID"`
	TradeType   TradeType       `json:"tradeType"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Fee         decimal.Decimal `json:"fee"`
	OccurredAt  time.Time       `json:"occurredAt"`
	EntryID     string          `json:"entryID"`
	AuditFields
}

// HoldingSnapshot mirrors the holding_snapshots table.
type HoldingSnapshot struct {
	SnapshotID   string          `json:"snapshotID"`
	HouseholdID  string          `json:"householdID"`
	SnapshotDate time.Time       `json:"snapshotDate"`
	SecurityID   string          `json:"securityID"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	LastPrice    decimal.Decimal `json:"lastPrice"`
	Valuation    decimal.Decimal `json:"valuation"`
}
