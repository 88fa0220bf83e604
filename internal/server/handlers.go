package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chipsplit/chipsplit/internal/engine"
	"github.com/chipsplit/chipsplit/internal/ledger"
	"github.com/chipsplit/chipsplit/pkg/metrics"
	"github.com/chipsplit/chipsplit/pkg/money"
)

// abortWithError maps store and engine sentinels to HTTP statuses.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrSessionNotFound),
		errors.Is(err, ledger.ErrPlayerNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrSessionClosed),
		errors.Is(err, ledger.ErrAlreadyVoided),
		errors.Is(err, engine.ErrSessionNotActive),
		errors.Is(err, engine.ErrInvalidPlayerState),
		errors.Is(err, engine.ErrUnbalancedLedger):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := s.store.CreateSession(c.Request.Context(), req.Name)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) getSession(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	session, err := s.store.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	players, err := s.store.GetPlayers(c.Request.Context(), sessionID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	transactions, err := s.store.GetNonVoidedTransactions(c.Request.Context(), sessionID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":      session,
		"players":      players,
		"transactions": transactions,
	})
}

func (s *Server) addPlayer(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req addPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	player, err := s.store.AddPlayer(c.Request.Context(), sessionID, req.Name)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

func (s *Server) recordTransaction(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req recordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid player_id"})
		return
	}

	record, err := s.store.RecordTransaction(c.Request.Context(), sessionID, playerID,
		ledger.TransactionType(req.Type), req.Amount)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	metrics.TransactionsRecorded.WithLabelValues(req.Type).Inc()
	c.JSON(http.StatusCreated, record)
}

func (s *Server) voidTransaction(c *gin.Context) {
	txID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req voidTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.VoidTransaction(c.Request.Context(), txID, req.Reason); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voided": true})
}

// earlyCashOut computes a player's fair mid-session exit value. With
// commit=true the result is also recorded as a cash-out transaction and
// the player leaves the table.
func (s *Server) earlyCashOut(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	playerID, ok := parseID(c, "playerId")
	if !ok {
		return
	}
	var req earlyCashOutRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.store.Snapshot(c.Request.Context(), sessionID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	result, err := engine.CalculateEarlyCashOut(*snap, engine.EarlyCashOutRequest{
		SessionID: sessionID,
		PlayerID:  playerID,
	})
	if err != nil {
		metrics.EarlyCashOuts.WithLabelValues("error").Inc()
		s.abortWithError(c, err)
		return
	}

	outcome := "full"
	if result.ShortfallCents > 0 {
		outcome = "capped"
	}
	metrics.EarlyCashOuts.WithLabelValues(outcome).Inc()

	committed := false
	if req.Commit {
		if result.CashOutCents > 0 {
			if _, err := s.store.RecordTransaction(c.Request.Context(), sessionID, playerID,
				ledger.TransactionCashOut, money.FromCents(result.CashOutCents)); err != nil {
				s.abortWithError(c, err)
				return
			}
		}
		if err := s.store.DeactivatePlayer(c.Request.Context(), playerID); err != nil {
			s.abortWithError(c, err)
			return
		}
		committed = true
	}

	c.JSON(http.StatusOK, toEarlyCashOutResponse(result, committed))
}

// settle freezes the session, runs the optimizer, validates the result,
// and completes the session only when validation passes. An invalid
// settlement is always blocked and leaves the session in settling for
// investigation; an unbalanced ledger reopens the session so remaining
// cash-outs can be recorded.
func (s *Server) settle(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	snap, err := s.store.FreezeForSettlement(c.Request.Context(), sessionID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	settlement, err := engine.OptimizeSettlement(*snap)
	if err != nil {
		metrics.SettlementsComputed.WithLabelValues("error").Inc()
		if errors.Is(err, engine.ErrUnbalancedLedger) {
			if reopenErr := s.store.ReopenSession(c.Request.Context(), sessionID); reopenErr != nil {
				s.logger.Error("failed to reopen session after unbalanced ledger",
					zap.String("session_id", sessionID.String()), zap.Error(reopenErr))
			}
		}
		s.abortWithError(c, err)
		return
	}

	validation := engine.ValidateSettlement(*snap, settlement)
	if !validation.IsValid {
		metrics.SettlementsComputed.WithLabelValues("blocked").Inc()
		s.logger.Error("settlement failed validation, blocking",
			zap.String("session_id", sessionID.String()),
			zap.Int64("discrepancy_cents", validation.DiscrepancyCents))
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "settlement failed validation",
			"validation": toValidationResponse(validation),
		})
		return
	}

	if err := s.store.CompleteSession(c.Request.Context(), sessionID); err != nil {
		s.abortWithError(c, err)
		return
	}

	metrics.SettlementsComputed.WithLabelValues("ok").Inc()
	metrics.SettlementPayments.Observe(float64(len(settlement.Payments)))
	c.JSON(http.StatusOK, settleResponse{
		Settlement: toSettlementResponse(settlement),
		Validation: toValidationResponse(validation),
	})
}
