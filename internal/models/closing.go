package models

import "time"

// MonthClosing mirrors the month_closings table. SummaryJSON holds the immutable
// snapshot serialized as JSONB.
type MonthClosing struct {
	ClosingID   string    `json:"closingID"`
	HouseholdID string    `json:"householdID"`
	YearMonth   string    `json:"yearMonth"`
	ClosedAt    time.Time `json:"closedAt"`
	ClosedBy    string    `json:"closedBy"`
	SummaryJSON []byte    `json:"-"`
}
