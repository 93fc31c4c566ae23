package recordstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
)

// PostgresRepository implements records.Store[T] over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository[T any] struct {
	db    dbx.DBTX
	table Table[T]

	insertSQL string
	selectSQL string
}

var _ records.Store[struct{}] = (*PostgresRepository[struct{}])(nil)

// NewPostgresRepository constructs a repository for table bound to db.
func NewPostgresRepository[T any](db dbx.DBTX, table Table[T]) *PostgresRepository[T] {
	placeholders := make([]string, len(table.Columns))
	for i := range placeholders {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	cols := strings.Join(table.Columns, ", ")

	return &PostgresRepository[T]{
		db:        db,
		table:     table,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table.Name, cols, strings.Join(placeholders, ", ")),
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", cols, table.Name),
	}
}

// Insert stores rec. A reference to an unknown user, or a reference that is
// not an id at all, is a validation error.
func (r *PostgresRepository[T]) Insert(ctx context.Context, rec *T) error {
	_, err := r.db.ExecContext(ctx, r.insertSQL, r.table.Args(rec)...)
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case dbx.CodeForeignKeyViolation:
			return common.Invalid(referenceColumn(r.table.Name, pgErr.ConstraintName), "references an unknown user")
		case dbx.CodeInvalidText:
			return common.Invalid(r.referenceField(), "is not a valid id")
		}
	}
	return fmt.Errorf("db error: %w", err)
}

// referenceField names the client-supplied id column of the table.
func (r *PostgresRepository[T]) referenceField() string {
	switch {
	case r.table.OwnerColumn != "":
		return r.table.OwnerColumn
	case r.table.RecipientColumn != "":
		return r.table.RecipientColumn
	}
	return "reference"
}

// List returns the rows matching f in the table's fixed order. A malformed
// owner id matches no user and is common.ErrorNotFound.
func (r *PostgresRepository[T]) List(ctx context.Context, f records.Filter) ([]T, error) {
	query, args := r.listQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if dbx.IsInvalidInput(err) {
		return nil, fmt.Errorf("owner %q: %w", f.OwnerID, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var rec T
		if err := rows.Scan(r.table.Dest(&rec)...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository[T]) listQuery(f records.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.OwnerID != "" && r.table.OwnerColumn != "" {
		where = append(where, r.table.OwnerColumn+" = "+next(f.OwnerID))
	}
	if f.VisibleTo != "" && r.table.SenderColumn != "" {
		p := next(f.VisibleTo)
		where = append(where, fmt.Sprintf("(%s = %s OR %s = %s OR %s IS NULL)",
			r.table.SenderColumn, p, r.table.RecipientColumn, p, r.table.RecipientColumn))
	}
	if !f.From.IsZero() && r.table.DateColumn != "" {
		where = append(where, r.table.DateColumn+" >= "+next(f.From))
	}

	var b strings.Builder
	b.WriteString(r.selectSQL)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(r.table.OrderBy)
	return b.String(), args
}

// referenceColumn turns "drug_tests_user_id_fkey" into "user_id".
func referenceColumn(table, constraint string) string {
	col := strings.TrimSuffix(strings.TrimPrefix(constraint, table+"_"), "_fkey")
	if col == "" {
		return "reference"
	}
	return col
}
