package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var cols = []string{"id", "email", "name", "picture", "role", "created_at"}

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*email,\s*name,\s*picture,\s*role\).*ON\s+CONFLICT\s+\(email\)\s+DO\s+UPDATE.*RETURNING\s+id,\s*email`
	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("new-id", "ann@example.com", "Ann", "", "user").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("old-id", "ann@example.com", "Ann", "", "mentor", now))

	got, err := repo.Upsert(context.Background(), &models.User{ID: "new-id", Email: "ann@example.com", Name: "Ann", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if got.ID != "old-id" || got.Role != models.RoleMentor {
		t.Fatalf("existing account must be returned unchanged, got %+v", got)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	_, err := repo.Upsert(context.Background(), &models.User{})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_FoundAndNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*email,\s*name,\s*picture,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "a@b.c", "A", "p.png", "admin", time.Now()))
	mock.ExpectQuery(q).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	u, err := repo.Get(context.Background(), "u1")
	if err != nil || u.Role != models.RoleAdmin || u.Picture != "p.png" {
		t.Fatalf("unexpected result: %+v, %v", u, err)
	}

	_, err = repo.Get(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList_RoleFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+role\s*=\s*\$1\s+ORDER\s+BY\s+name,\s*id$`).
		WithArgs("mentor").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("m1", "m@b.c", "M", "", "mentor", time.Now()))

	got, err := repo.List(context.Background(), models.RoleMentor)
	if err != nil || len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("unexpected result: %+v, %v", got, err)
	}
}

func TestList_AllEmpty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+users\s+ORDER\s+BY`).WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.List(context.Background(), "")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v, %v", got, err)
	}
}

func TestUpdateRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^UPDATE users SET role = \$1 WHERE id = \$2$`
	mock.ExpectExec(q).WithArgs("mentor", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("mentor", "ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("mentor", "u2").WillReturnError(errors.New("db err"))

	if err := repo.UpdateRole(context.Background(), "u1", models.RoleMentor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.UpdateRole(context.Background(), "ghost", models.RoleMentor); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if err := repo.UpdateRole(context.Background(), "u2", models.RoleMentor); err == nil {
		t.Fatal("expected error")
	}
}

func TestMalformedIDIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	invalid := &pgconn.PgError{Code: "22P02"}
	mock.ExpectQuery(`FROM users WHERE id = \$1$`).WithArgs("bob").WillReturnError(invalid)
	mock.ExpectExec(`^UPDATE users SET role`).WithArgs("mentor", "bob").WillReturnError(invalid)

	if _, err := repo.Get(context.Background(), "bob"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := repo.UpdateRole(context.Background(), "bob", models.RoleMentor); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
