package http

import (
	"log/slog"
	"net/http"

	"moneta/internal/log"
	"moneta/internal/voice"
)

// handleVoiceSegment feeds one recognized segment into the caller's reducer.
// A finalized draft is persisted before the response is written.
func (s *Server) handleVoiceSegment(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var seg voice.Segment
	if err := decodeJSON(r, &seg); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ur := s.reducerFor(userID)
	ur.mu.Lock()
	result := ur.reducer.Reduce(seg)
	draft := ur.reducer.Draft()
	ur.mu.Unlock()

	slog.InfoContext(r.Context(), "Voice segment reduced",
		log.FieldUserID, userID,
		log.FieldIntent, seg.Intent.Intent,
		log.FieldSegmentFinal, seg.IsFinal,
		log.FieldOutcome, result.Outcome.String())

	resp := map[string]any{
		"transcript": seg.Transcript(),
		"outcome":    result.Outcome.String(),
		"draft":      draft,
	}

	if result.Outcome == voice.Emitted && result.Transaction != nil {
		created, err := s.transactions.CreateTransaction(r.Context(), userID, *result.Transaction)
		if err != nil {
			slog.ErrorContext(r.Context(), "Persist voice transaction failed",
				"transaction_id", result.Transaction.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "save transaction failed")
			return
		}
		resp["transaction"] = created
	}

	respondJSON(w, http.StatusOK, resp)
}
