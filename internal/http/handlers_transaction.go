package http

import (
	"errors"
	"log/slog"
	"net/http"

	"moneta/internal/core"
	"moneta/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	txs, err := s.transactions.ListTransactions(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		respondError(w, http.StatusInternalServerError, "list transactions failed")
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var req struct {
		Type     core.TransactionType `json:"type"`
		Category string               `json:"category"`
		Date     string               `json:"date"`
		Amount   float64              `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := core.Transaction{
		Category: core.CategoryRef{Type: req.Type, Name: core.TitleCase(req.Category)},
		Date:     req.Date,
		Amount:   req.Amount,
	}
	created, err := s.transactions.CreateTransaction(r.Context(), userID, t)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		respondError(w, http.StatusInternalServerError, "create transaction failed")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var req core.RecurringDraft
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Category = core.TitleCase(req.Category)

	m, err := s.transactions.CreateRecurring(r.Context(), userID, req)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create recurring transaction failed", "error", err)
		respondError(w, http.StatusInternalServerError, "create recurring transaction failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"rule":            m.Rule,
		"firstOccurrence": m.FirstOccurrence,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	id := r.PathValue("id")

	if err := s.transactions.DeleteTransaction(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction failed", "error", err)
		respondError(w, http.StatusInternalServerError, "delete transaction failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidPeriod) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrEmptyPeriodType) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidType)
}
