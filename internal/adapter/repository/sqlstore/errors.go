package sqlstore

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry   = 1062
	pgUniqueViolation     = "23505"
	sqliteUniqueViolation = "UNIQUE constraint failed"
)

// uniqueViolation reports whether err is a unique-index violation on any
// supported engine. detail is the index or column name only, never the
// offending value, so callers can attribute the violation safely.
func uniqueViolation(err error) (detail string, ok bool) {
	if err == nil {
		return "", false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return mysqlKeyName(me.Message), true
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == pgUniqueViolation {
		return pe.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	if msg := err.Error(); strings.Contains(msg, sqliteUniqueViolation) {
		return msg, true
	}
	return "", false
}

// mysqlKeyName pulls the key out of "Duplicate entry '<value>' for key '<key>'".
// The value is client text and may contain anything, so the key is read from the end.
func mysqlKeyName(msg string) string {
	const marker = "for key '"
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSuffix(msg[i+len(marker):], "'")
}

func mentions(detail string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(detail, m) {
			return true
		}
	}
	return false
}

func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
