package database

import (
	"errors"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"

	apperrors "github.com/SkylarKelty/Rapid/pkg/errors"
)

// driverCode extracts the vendor error code from a driver error, if any.
// MySQL reports its error number, PostgreSQL its SQLSTATE and SQLite its
// extended result code.
func driverCode(err error) string {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return strconv.Itoa(int(myErr.Number))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return strconv.Itoa(liteErr.Code())
	}

	return ""
}

// wrapError turns a driver failure into a DatabaseError. Errors that are
// already application errors pass through untouched.
func wrapError(operation, sql string, err error) error {
	if err == nil {
		return nil
	}
	var appErr apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewDatabaseError(operation, sql, driverCode(err), err)
}

// isDeadlock reports whether err is a lock conflict worth telling apart in logs.
// MySQL: 1213 deadlock, 1205 lock wait timeout. PostgreSQL: 40001 serialization
// failure, 40P01 deadlock.
func isDeadlock(err error) bool {
	switch driverCode(err) {
	case "1213", "1205", "40001", "40P01":
		return true
	default:
		return false
	}
}
