package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/myfinance/finauth/internal/common"
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

func profileColumns() []string {
	return []string{"id", "email", "full_name", "password_hash", "timezone", "currency", "language", "created_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+user_profiles\b.*RETURNING\s+created_at\s*$`
	created := time.Now()

	mock.ExpectQuery(q).
		WithArgs("u1", "a@b.com", "Ana", "hash", "America/Sao_Paulo", "BRL", "pt-BR").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	got, err := repo.Create(context.Background(), &models.UserProfile{
		ID:           "u1",
		Email:        "a@b.com",
		FullName:     "Ana",
		PasswordHash: "hash",
		Timezone:     "America/Sao_Paulo",
		Currency:     "BRL",
		Language:     "pt-BR",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u1" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+user_profiles`).
		WillReturnError(errors.New("duplicate key"))

	_, err := repo.Create(context.Background(), &models.UserProfile{Email: "a@b.com"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+user_profiles\s+WHERE\s+email\s*=\s*\$1\s*$`
	created := time.Now()

	mock.ExpectQuery(q).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows(profileColumns()).
			AddRow("u1", "a@b.com", "Ana", "hash", "America/Sao_Paulo", "BRL", "pt-BR", created))

	got, err := repo.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u1" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+user_profiles\s+WHERE\s+email`).
		WithArgs("missing@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+user_profiles\s+WHERE\s+id`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+user_profiles\s+SET\s+password_hash\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("u1", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePasswordHash(context.Background(), "u1", "new-hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdatePasswordHash_NoRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+user_profiles`).
		WithArgs("ghost", "h").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePasswordHash(context.Background(), "ghost", "h")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+user_profiles\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
