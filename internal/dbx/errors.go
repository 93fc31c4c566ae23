package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	CodeForeignKeyViolation = "23503"
	CodeInvalidText         = "22P02"
)

// PgCode returns the SQLSTATE of err, or "" when err is not a Postgres error.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsInvalidInput reports whether Postgres rejected a parameter's text form,
// e.g. a malformed uuid.
func IsInvalidInput(err error) bool {
	return PgCode(err) == CodeInvalidText
}
