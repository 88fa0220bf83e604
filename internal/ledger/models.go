// Package ledger owns session, player, and transaction records and
// produces the immutable balance snapshots the settlement engine
// consumes. It is the only package that touches storage.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus mirrors the session lifecycle persisted in storage.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionSettling  SessionStatus = "settling"
	SessionCompleted SessionStatus = "completed"
)

// TransactionType distinguishes money entering and leaving the pot.
type TransactionType string

const (
	TransactionBuyIn   TransactionType = "buy_in"
	TransactionCashOut TransactionType = "cash_out"
)

// Session is one live poker table being tracked.
type Session struct {
	ID          uuid.UUID     `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string        `json:"name" validate:"required,max=100"`
	Status      SessionStatus `json:"status" gorm:"index"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// Player belongs to a session and is mutated only through recorded
// transactions; Active flips off when the player leaves the table.
type Player struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid;index"`
	Name      string    `json:"name" validate:"required,max=100"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is an immutable buy-in or cash-out record. Nothing is ever
// updated except the void fields, and voided rows stay behind for audit.
type Transaction struct {
	ID         uuid.UUID       `json:"id" gorm:"primaryKey;type:uuid"`
	SessionID  uuid.UUID       `json:"session_id" gorm:"type:uuid;index"`
	PlayerID   uuid.UUID       `json:"player_id" gorm:"type:uuid;index"`
	Type       TransactionType `json:"type"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(20,2)"`
	Timestamp  time.Time       `json:"timestamp"`
	Voided     bool            `json:"voided" gorm:"index"`
	VoidReason string          `json:"void_reason,omitempty"`
	VoidedAt   *time.Time      `json:"voided_at,omitempty"`
}
