package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"moneta/internal/auth"
	"moneta/internal/storage"
)

// UserStore is the persistence port for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u storage.User) error
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	GetUserByID(ctx context.Context, id string) (storage.User, error)
}

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidRegistration = errors.New("name, email and password are required")
)

// UserService handles registration and login.
type UserService struct {
	store  UserStore
	tokens *auth.TokenIssuer
}

func NewUserService(store UserStore, tokens *auth.TokenIssuer) *UserService {
	return &UserService{store: store, tokens: tokens}
}

// Register creates a new account with a hashed password.
func (s *UserService) Register(ctx context.Context, name, surname, email, password string) (storage.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return storage.User{}, ErrInvalidRegistration
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := storage.User{
		ID:           uuid.NewString(),
		Name:         name,
		Surname:      strings.TrimSpace(surname),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return storage.User{}, ErrEmailTaken
		}
		return storage.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks credentials and mints a bearer token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", auth.ErrInvalidCredentials
		}
		return "", fmt.Errorf("load user: %w", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return "", auth.ErrInvalidCredentials
	}
	return s.tokens.Mint(u.ID)
}

// GetUser loads an account by id.
func (s *UserService) GetUser(ctx context.Context, id string) (storage.User, error) {
	return s.store.GetUserByID(ctx, id)
}
