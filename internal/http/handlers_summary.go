package http

import (
	"log/slog"
	"net/http"
	"strings"

	"moneta/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var txType core.TransactionType
	switch strings.ToLower(r.URL.Query().Get("type")) {
	case "income":
		txType = core.Income
	case "expense", "":
		txType = core.Expense
	default:
		respondError(w, http.StatusBadRequest, "type must be Income or Expense")
		return
	}

	summary, err := s.transactions.Summary(r.Context(), userID, txType)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary failed", "error", err)
		respondError(w, http.StatusInternalServerError, "summary failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"type":  txType,
		"total": summary.Total,
		"chart": summary.Chart(),
	})
}
