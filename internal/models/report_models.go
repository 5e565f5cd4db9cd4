package models

import "time"

// ReportTotals aggregates a reporting window. TotalVoided is negative-signed
// (ADJUST deltas), so TotalNet is a straight addition of the two sums.
type ReportTotals struct {
	TotalPointsLoaded int `json:"totalPointsLoaded"`
	TotalVoided       int `json:"totalVoided"`
	TotalNet          int `json:"totalNet"`
}

// PointsLoadedItem is one non-voided LOAD in the report window, joined to its
// customer for display.
type PointsLoadedItem struct {
	ID             int64     `json:"id" db:"id"`
	CreatedAt      time.Time `json:"createdAt" db:"createdat"`
	Points         int       `json:"points" db:"points"`
	Operations     *int      `json:"operations,omitempty" db:"operations"`
	UserID         *int64    `json:"userId,omitempty" db:"userid"`
	UserName       *string   `json:"userName,omitempty" db:"username"`
	CustomerDNI    string    `json:"customerDni" db:"customer_dni"`
	CustomerNombre string    `json:"customerNombre" db:"customer_nombre"`
}

// PointsLoadedReport is the full aggregator output.
type PointsLoadedReport struct {
	Totals ReportTotals       `json:"totals"`
	Items  []PointsLoadedItem `json:"items"`
}

// DailySummary is the human-readable digest sent through the Telegram bot.
type DailySummary struct {
	TotalPoints   int    `json:"totalPoints"`
	TopUserName   string `json:"topUserName"`
	TopUserPoints int    `json:"topUserPoints"`
	FormattedDate string `json:"formattedDate"`
	StartISODate  string `json:"startISODate"`
}
