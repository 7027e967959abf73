package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestVendsRepositories(t *testing.T) {
	m := NewPostgresRepositoryManager()

	if m.Users(nil) == nil {
		t.Fatalf("Users returned nil")
	}
	if m.IssuedTokens(nil) == nil {
		t.Fatalf("IssuedTokens returned nil")
	}
	if m.RevokedTokens(nil) == nil {
		t.Fatalf("RevokedTokens returned nil")
	}
}

func TestRunMigrations_Error(t *testing.T) {
	old := gooseUpContext
	defer func() { gooseUpContext = old }()

	boom := errors.New("migration failed")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	m := NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("want migration error, got %v", err)
	}
}

func TestRunMigrations_CallsGoose(t *testing.T) {
	old := gooseUpContext
	defer func() { gooseUpContext = old }()

	called := false
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		if dir != "." {
			t.Fatalf("want embedded root dir, got %q", dir)
		}
		return nil
	}

	m := NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("goose.UpContext was not called")
	}
}
