package issuedtokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/myfinance/finauth/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func tokenColumns() []string {
	return []string{"jti", "token_kind", "user_id", "family_id", "issued_at", "expires_at"}
}

func TestRecord(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+issued_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`).
		WithArgs("jti-1", models.TokenKindAccess, "u1", "fam-1", now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Record(context.Background(), &models.IssuedToken{
		JTI:       "jti-1",
		Kind:      models.TokenKindAccess,
		UserID:    "u1",
		FamilyID:  "fam-1",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActiveForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(tokenColumns()).
		AddRow("jti-1", models.TokenKindAccess, "u1", "fam-1", now, now.Add(time.Hour)).
		AddRow("jti-2", models.TokenKindRefresh, "u1", "fam-1", now, now.Add(2*time.Hour))

	mock.ExpectQuery(`(?s)FROM\s+issued_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+expires_at\s*>\s*now\(\)`).
		WithArgs("u1").
		WillReturnRows(rows)

	tokens, err := repo.ActiveForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("want 2 tokens, got %d", len(tokens))
	}
	if tokens[1].JTI != "jti-2" || tokens[1].Kind != models.TokenKindRefresh {
		t.Fatalf("unexpected token: %+v", tokens[1])
	}
}

func TestActiveForFamily(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(tokenColumns()).
		AddRow("jti-3", models.TokenKindRefresh, "u1", "fam-9", now, now.Add(time.Hour))

	mock.ExpectQuery(`(?s)FROM\s+issued_tokens\s+WHERE\s+family_id\s*=\s*\$1\s+AND\s+expires_at\s*>\s*now\(\)`).
		WithArgs("fam-9").
		WillReturnRows(rows)

	tokens, err := repo.ActiveForFamily(context.Background(), "fam-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 1 || tokens[0].FamilyID != "fam-9" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
}

func TestActiveForUser_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+issued_tokens`).
		WillReturnError(errors.New("db err"))

	_, err := repo.ActiveForUser(context.Background(), "u1")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestCleanExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+issued_tokens\s+WHERE\s+expires_at\s*<\s*now\(\)\s*$`).
		WillReturnResult(sqlmock.NewResult(0, 5))

	count, err := repo.CleanExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 5 {
		t.Fatalf("want 5, got %d", count)
	}
}
