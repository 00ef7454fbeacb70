package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tahcohcat/calmkid/internal/models"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	accounts := f.svc.Accounts

	acc, err := accounts.Register(ctx, models.RegisterRequest{Email: " Sam@Example.com ", Password: "secret1", Name: "Sam"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acc.ID == "" || acc.Email != "sam@example.com" {
		t.Fatalf("unexpected account %+v", acc)
	}

	p, err := f.svc.Profiles.Get(ctx, acc.ID)
	if err != nil || p.Name != "Sam" || p.Stars != 0 {
		t.Fatalf("profile = %+v, %v", p, err)
	}

	if _, err := accounts.Register(ctx, models.RegisterRequest{Email: "sam@example.com", Password: "secret2", Name: "Other"}); !errors.Is(err, models.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := accounts.Register(ctx, models.RegisterRequest{Email: "x@example.com", Password: "short", Name: "X"}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := accounts.Authenticate(ctx, models.LoginRequest{Email: "SAM@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != acc.ID || got.LastLoginAt == nil {
		t.Fatalf("unexpected login %+v", got)
	}

	for _, req := range []models.LoginRequest{
		{Email: "sam@example.com", Password: "wrong!!"},
		{Email: "nobody@example.com", Password: "secret1"},
	} {
		if _, err := accounts.Authenticate(ctx, req); !errors.Is(err, models.ErrInvalidCredentials) {
			t.Fatalf("Authenticate(%s) = %v", req.Email, err)
		}
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	accounts := f.svc.Accounts

	acc, err := accounts.Register(ctx, models.RegisterRequest{Email: "kim@example.com", Password: "first-pass", Name: "Kim"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := accounts.ChangePassword(ctx, acc.ID, "nope-nope", "second-pass"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := accounts.ChangePassword(ctx, acc.ID, "first-pass", "second-pass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := accounts.Authenticate(ctx, models.LoginRequest{Email: "kim@example.com", Password: "second-pass"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	stored, err := accounts.Get(ctx, acc.ID)
	if err != nil || stored.Password != "" {
		t.Fatalf("Get leaked the hash or failed: %+v, %v", stored, err)
	}
}
