package repository

import (
	"errors"

	"github.com/jackc/pgx"
	"github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr pgx.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var pgErrPtr *pgx.PgError
	if errors.As(err, &pgErrPtr) {
		return pgErrPtr.Code == pgUniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
