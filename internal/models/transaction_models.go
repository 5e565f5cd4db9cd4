package models

import "time"

// Transaction types recorded in the ledger.
const (
	TransactionTypeLoad   = "LOAD"   // points credited from a purchase
	TransactionTypeRedeem = "REDEEM" // points spent on a prize or custom discount
	TransactionTypeAdjust = "ADJUST" // corrective reversal of a voided LOAD
)

// Transaction is a single ledger entry. Entries are append-only: the only
// mutation after insert is the void marking (VoidedAt/VoidedByUserID/
// VoidReason) on LOAD rows, set exactly once.
//
// UserID/UserName are captured denormalized at write time so ledger rows stay
// meaningful after a staff account is deleted.
type Transaction struct {
	ID                    int64      `json:"id" db:"id"`
	CustomerID            int64      `json:"customerId" db:"customerid"`
	Type                  string     `json:"type" db:"type"`
	Operations            *int       `json:"operations,omitempty" db:"operations"`
	Points                int        `json:"points" db:"points"`
	Note                  *string    `json:"note,omitempty" db:"note"`
	UserID                *int64     `json:"userId,omitempty" db:"userid"`
	UserName              *string    `json:"userName,omitempty" db:"username"`
	VoidedAt              *time.Time `json:"voidedAt,omitempty" db:"voidedat"`
	VoidedByUserID        *int64     `json:"voidedByUserId,omitempty" db:"voidedbyuserid"`
	VoidReason            *string    `json:"voidReason,omitempty" db:"voidreason"`
	OriginalTransactionID *int64     `json:"originalTransactionId,omitempty" db:"originaltransactionid"`
	CreatedAt             time.Time  `json:"createdAt" db:"createdat"`
}
