package service

import (
	"context"
	"testing"
)

func TestIdentityResolveKnownUser(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "identity-known")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	svc := NewIdentityService(gdb)

	profile, err := svc.Resolve(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !profile.Known || profile.Username != "alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestIdentityResolveMissingUserYieldsSentinel(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "identity-missing")
	defer cleanup()

	svc := NewIdentityService(gdb)

	profile, err := svc.Resolve(context.Background(), 4242)
	if err != nil {
		t.Fatalf("missing user must not fail the caller: %v", err)
	}
	if profile.Known || profile.Username != UnknownAuthorName {
		t.Fatalf("expected sentinel profile, got %+v", profile)
	}
}

func TestIdentityResolveAllBatches(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "identity-batch")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	svc := NewIdentityService(gdb)

	resolved, err := svc.ResolveAll(context.Background(), []uint{alice.ID, bob.ID, alice.ID, 999})
	if err != nil {
		t.Fatalf("resolve all: %v", err)
	}

	if len(resolved) != 3 {
		t.Fatalf("expected 3 distinct entries, got %d", len(resolved))
	}
	if resolved[alice.ID].Username != "alice" || resolved[bob.ID].Username != "bob" {
		t.Fatalf("unexpected resolutions: %+v", resolved)
	}
	if resolved[999].Known || resolved[999].Username != UnknownAuthorName {
		t.Fatalf("expected sentinel for missing id, got %+v", resolved[999])
	}
}
