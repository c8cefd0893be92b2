package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"linkly-be/internal/entities"
	"linkly-be/internal/jwt"
	"linkly-be/internal/models"
	"linkly-be/internal/repository"
)

type fakeUserRepo struct {
	byEmail map[string]*entities.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*entities.User)}
}

func (f *fakeUserRepo) Create(email, passwordHash string) (*entities.User, error) {
	if _, exists := f.byEmail[email]; exists {
		return nil, repository.ErrDuplicateEmail
	}

	f.nextID++
	user := &entities.User{
		ID:           fmt.Sprintf("user-%d", f.nextID),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.byEmail[email] = user
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*entities.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func setupAuth(t *testing.T) AuthService {
	t.Helper()
	return NewAuthService(newFakeUserRepo(), jwt.NewJWTService("test-secret", time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupAuth(t)

	reg, err := svc.Register(&models.RegisterRequest{Email: "user@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Token == "" {
		t.Error("expected a token on registration")
	}
	if reg.Email != "user@example.com" {
		t.Errorf("unexpected email %s", reg.Email)
	}

	login, err := svc.Login(&models.LoginRequest{Email: "user@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.UserID != reg.UserID {
		t.Errorf("login user %s does not match registration %s", login.UserID, reg.UserID)
	}
	if login.Token == "" {
		t.Error("expected a token on login")
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	svc := setupAuth(t)

	if _, err := svc.Register(&models.RegisterRequest{Email: "user@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.Register(&models.RegisterRequest{Email: "user@example.com", Password: "other-pass"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := setupAuth(t)

	if _, err := svc.Register(&models.RegisterRequest{Email: "user@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, err := svc.Login(&models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := setupAuth(t)

	_, err := svc.Login(&models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}
