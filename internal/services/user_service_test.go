package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"moneta/internal/auth"
	"moneta/internal/storage"
)

type fakeUserStore struct {
	byEmail map[string]storage.User
	byID    map[string]storage.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: make(map[string]storage.User),
		byID:    make(map[string]storage.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, u storage.User) error {
	if _, exists := f.byEmail[u.Email]; exists {
		return storage.ErrEmailTaken
	}
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (storage.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (storage.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func newUserService() (*UserService, *fakeUserStore) {
	store := newFakeUserStore()
	return NewUserService(store, auth.NewTokenIssuer("test-secret", time.Hour)), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ada", "Lovelace", "Ada@Example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.PasswordHash == "s3cret" {
		t.Error("password stored in plain text")
	}

	token, err := svc.Login(ctx, "ada@example.com", "s3cret")
	if err != nil || token == "" {
		t.Fatalf("Login() = %q, %v", token, err)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("wrong password: %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("unknown email: %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"missing name", "", "a@example.com", "pw"},
		{"missing email", "Ada", "", "pw"},
		{"missing password", "Ada", "a@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.userName, "", tt.email, tt.password)
			if !errors.Is(err, ErrInvalidRegistration) {
				t.Errorf("Register() error = %v, want ErrInvalidRegistration", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ada", "", "a@example.com", "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "Bob", "", "a@example.com", "pw"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register: %v, want ErrEmailTaken", err)
	}
}
