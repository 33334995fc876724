package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-ircd/internal/store/sqlite"
)

func newTestAuthService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	logger := zerolog.Nop()
	return NewService(st, jwtConfig, &logger)
}

func TestCreateAccount_RejectsInvalidUsername(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, "ab", "password123"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}

	// Should be validated after trimming whitespace.
	if _, err := svc.CreateAccount(ctx, " ab ", "password123"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
}

func TestCreateAccount_RejectsInvalidPassword(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, "abc", "12345"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestCreateAccount_TrimsUsername(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	acc, err := svc.CreateAccount(ctx, " alice ", "password123")
	if err != nil {
		t.Fatalf("expected creation success, got %v", err)
	}
	if acc.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", acc.Username)
	}

	// Should collide because the stored username is trimmed.
	if _, err := svc.CreateAccount(ctx, "alice", "password123"); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, "root", "hunter22"); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if !svc.Verify("root", "hunter22") {
		t.Error("expected correct credentials to verify")
	}
	if svc.Verify("root", "wrong") {
		t.Error("expected wrong password to fail")
	}
	if svc.Verify("nobody", "hunter22") {
		t.Error("expected unknown account to fail")
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, "root", "hunter22"); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	token, err := svc.Login(ctx, "root", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Username != "root" {
		t.Errorf("expected username root, got %q", claims.Username)
	}

	if _, err := svc.Login(ctx, "root", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
