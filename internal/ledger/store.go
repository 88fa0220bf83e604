package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chipsplit/chipsplit/internal/engine"
	"github.com/chipsplit/chipsplit/pkg/money"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSessionClosed       = errors.New("session no longer accepts transactions")
	ErrAlreadyVoided       = errors.New("transaction already voided")
	ErrInvalidAmount       = errors.New("amount must be positive with cent precision")
)

// Store defines the ledger operations the engine's callers need.
type Store interface {
	CreateSession(ctx context.Context, name string) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	AddPlayer(ctx context.Context, sessionID uuid.UUID, name string) (*Player, error)
	DeactivatePlayer(ctx context.Context, playerID uuid.UUID) error
	GetPlayers(ctx context.Context, sessionID uuid.UUID) ([]*Player, error)
	RecordTransaction(ctx context.Context, sessionID, playerID uuid.UUID, txType TransactionType, amount decimal.Decimal) (*Transaction, error)
	VoidTransaction(ctx context.Context, txID uuid.UUID, reason string) error
	GetNonVoidedTransactions(ctx context.Context, sessionID uuid.UUID) ([]*Transaction, error)
	Snapshot(ctx context.Context, sessionID uuid.UUID) (*engine.Snapshot, error)
	FreezeForSettlement(ctx context.Context, sessionID uuid.UUID) (*engine.Snapshot, error)
	ReopenSession(ctx context.Context, sessionID uuid.UUID) error
	CompleteSession(ctx context.Context, sessionID uuid.UUID) error
}

// GormStore implements Store on top of gorm.
type GormStore struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewStore creates a ledger store backed by the given database.
func NewStore(logger *zap.Logger, db *gorm.DB) *GormStore {
	return &GormStore{logger: logger, db: db}
}

// CreateSession opens a new active session.
func (s *GormStore) CreateSession(ctx context.Context, name string) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New(),
		Name:      name,
		Status:    SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("session created", zap.String("session_id", session.ID.String()), zap.String("name", name))
	return session, nil
}

// GetSession loads a session by ID.
func (s *GormStore) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

// AddPlayer seats a player at an active session.
func (s *GormStore) AddPlayer(ctx context.Context, sessionID uuid.UUID, name string) (*Player, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionActive {
		return nil, ErrSessionClosed
	}

	player := &Player{
		ID:        uuid.New(),
		SessionID: sessionID,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(player).Error; err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

// DeactivatePlayer marks a player as having left the table, typically
// after their early cash-out transaction has been recorded.
func (s *GormStore) DeactivatePlayer(ctx context.Context, playerID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&Player{}).Where("id = ?", playerID).Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate player: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// GetPlayers lists every player seated in the session.
func (s *GormStore) GetPlayers(ctx context.Context, sessionID uuid.UUID) ([]*Player, error) {
	var players []*Player
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to find players: %w", err)
	}
	return players, nil
}

// RecordTransaction appends an immutable buy-in or cash-out. The session
// must still be active and the amount positive at cent precision.
func (s *GormStore) RecordTransaction(ctx context.Context, sessionID, playerID uuid.UUID, txType TransactionType, amount decimal.Decimal) (*Transaction, error) {
	if cents, err := money.ToCents(amount); err != nil || cents <= 0 {
		return nil, ErrInvalidAmount
	}

	var created *Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session Session
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to find session: %w", err)
		}
		if session.Status != SessionActive {
			return ErrSessionClosed
		}

		var count int64
		if err := tx.Model(&Player{}).Where("id = ? AND session_id = ?", playerID, sessionID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check player: %w", err)
		}
		if count == 0 {
			return ErrPlayerNotFound
		}

		created = &Transaction{
			ID:        uuid.New(),
			SessionID: sessionID,
			PlayerID:  playerID,
			Type:      txType,
			Amount:    amount,
			Timestamp: time.Now().UTC(),
		}
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("transaction recorded",
		zap.String("session_id", sessionID.String()),
		zap.String("player_id", playerID.String()),
		zap.String("type", string(txType)),
		zap.String("amount", amount.StringFixed(2)))
	return created, nil
}

// VoidTransaction flags a transaction as voided with a reason. Voided
// rows are excluded from balances but kept for audit.
func (s *GormStore) VoidTransaction(ctx context.Context, txID uuid.UUID, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record Transaction
		if err := tx.First(&record, "id = ?", txID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("failed to find transaction: %w", err)
		}
		if record.Voided {
			return ErrAlreadyVoided
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"voided":      true,
			"void_reason": reason,
			"voided_at":   &now,
		}
		if err := tx.Model(&record).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to void transaction: %w", err)
		}
		return nil
	})
}

// GetNonVoidedTransactions lists the transactions that count toward
// balances, oldest first.
func (s *GormStore) GetNonVoidedTransactions(ctx context.Context, sessionID uuid.UUID) ([]*Transaction, error) {
	var transactions []*Transaction
	if err := s.db.WithContext(ctx).
		Where("session_id = ? AND voided = ?", sessionID, false).
		Order("timestamp").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	return transactions, nil
}

// Snapshot projects the session's current balances into the immutable
// form the engine consumes. Voided transactions never contribute.
func (s *GormStore) Snapshot(ctx context.Context, sessionID uuid.UUID) (*engine.Snapshot, error) {
	var snap *engine.Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		snap, err = buildSnapshot(tx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// FreezeForSettlement flips an active session to settling and returns the
// snapshot taken inside the same database transaction, so the optimizer
// always sees a stable ledger with no concurrent recording.
func (s *GormStore) FreezeForSettlement(ctx context.Context, sessionID uuid.UUID) (*engine.Snapshot, error) {
	var snap *engine.Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session Session
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to find session: %w", err)
		}
		if session.Status == SessionCompleted {
			return ErrSessionClosed
		}
		if session.Status == SessionActive {
			if err := tx.Model(&session).Updates(map[string]interface{}{
				"status":     SessionSettling,
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
				return fmt.Errorf("failed to freeze session: %w", err)
			}
		}

		var err error
		snap, err = buildSnapshot(tx, sessionID)
		if err != nil {
			return err
		}
		snap.Status = engine.SessionSettling
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("session frozen for settlement", zap.String("session_id", sessionID.String()))
	return snap, nil
}

// ReopenSession thaws a settling session back to active, used when a
// settlement attempt is rejected and play or recording must continue.
func (s *GormStore) ReopenSession(ctx context.Context, sessionID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&Session{}).
		Where("id = ? AND status = ?", sessionID, SessionSettling).
		Updates(map[string]interface{}{
			"status":     SessionActive,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to reopen session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// CompleteSession closes a settling session once its settlement has been
// accepted.
func (s *GormStore) CompleteSession(ctx context.Context, sessionID uuid.UUID) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&Session{}).
		Where("id = ? AND status = ?", sessionID, SessionSettling).
		Updates(map[string]interface{}{
			"status":       SessionCompleted,
			"completed_at": &now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// buildSnapshot aggregates non-voided transactions into per-player
// positions using integer cents.
func buildSnapshot(tx *gorm.DB, sessionID uuid.UUID) (*engine.Snapshot, error) {
	var session Session
	if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	var players []*Player
	if err := tx.Where("session_id = ?", sessionID).Order("created_at").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to find players: %w", err)
	}

	var transactions []*Transaction
	if err := tx.Where("session_id = ? AND voided = ?", sessionID, false).Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	buyIns := make(map[uuid.UUID]int64, len(players))
	cashOuts := make(map[uuid.UUID]int64, len(players))
	for _, record := range transactions {
		cents, err := money.ToCents(record.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", record.ID, err)
		}
		switch record.Type {
		case TransactionBuyIn:
			buyIns[record.PlayerID] += cents
		case TransactionCashOut:
			cashOuts[record.PlayerID] += cents
		}
	}

	snap := &engine.Snapshot{
		SessionID: sessionID,
		Status:    engine.SessionStatus(session.Status),
		TakenAt:   time.Now().UTC(),
	}
	for _, p := range players {
		snap.Players = append(snap.Players, engine.PlayerPosition{
			PlayerID:      p.ID,
			Name:          p.Name,
			BuyInsCents:   buyIns[p.ID],
			CashOutsCents: cashOuts[p.ID],
			Active:        p.Active,
		})
	}
	return snap, nil
}
