package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"webnova-quiz-service/internal/domain"
)

func TestCredentialStore(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()
	cred := domain.Credential{UserID: "u1", Email: "a@b.c", PasswordHash: "x"}

	if err := store.Create(ctx, cred); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, cred); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	got, err := store.FindByEmail(ctx, "a@b.c")
	if err != nil || got.UserID != "u1" {
		t.Fatalf("unexpected lookup %+v %v", got, err)
	}
	if _, err := store.FindByEmail(ctx, "nobody@b.c"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := store.Delete(ctx, "a@b.c"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "a@b.c"); err != nil {
		t.Fatalf("deleting twice should be a no-op, got %v", err)
	}
	if err := store.Create(ctx, cred); err != nil {
		t.Fatalf("email should be free after delete: %v", err)
	}
}

func TestRevocationList(t *testing.T) {
	list := NewRevocationList()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list.clock = func() time.Time { return now }
	ctx := context.Background()

	_ = list.Revoke(ctx, "jti-1", now.Add(time.Hour))
	if revoked, _ := list.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected revoked token")
	}
	if revoked, _ := list.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatalf("unexpected revocation")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := list.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("expected revocation to lapse with the token")
	}
}
