package http

import (
	"errors"
	"log/slog"
	"net/http"

	"moneta/internal/auth"
	"moneta/internal/services"
	"moneta/internal/storage"
)

type userResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname,omitempty"`
	Email   string `json:"email"`
}

func toUserResponse(u storage.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Surname: u.Surname, Email: u.Email}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.users.Register(r.Context(), req.Name, req.Surname, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRegistration):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrEmailTaken):
			respondError(w, http.StatusConflict, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Registration failed", "error", err)
			respondError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	token, err := s.tokens.Mint(u.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token mint failed", "error", err)
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user":         toUserResponse(u),
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	u, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "unknown account")
			return
		}
		slog.ErrorContext(r.Context(), "Load profile failed", "error", err)
		respondError(w, http.StatusInternalServerError, "load profile failed")
		return
	}

	balance, err := s.transactions.Balance(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Balance computation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "load profile failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":    toUserResponse(u),
		"balance": balance,
	})
}
