package dberrors

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE коды PostgreSQL
const (
	CodeUniqueViolation      = "23505"
	CodeExclusionViolation   = "23P01"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
	CodeAdminShutdown        = "57P01"
	CodeCrashShutdown        = "57P02"
	CodeCannotConnectNow     = "57P03"
	CodeTooManyConnections   = "53300"
	classConnectionException = "08"
)

// pgError код и имя ограничения из ошибки любого из поддерживаемых драйверов
func pgError(err error) (code string, constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, true
	}

	return "", "", false
}

// Code возвращает SQLSTATE или пустую строку
func Code(err error) string {
	code, _, _ := pgError(err)
	return code
}

// IsUniqueViolation нарушение уникальности; если constraint не пуст, сверяется и имя ограничения
func IsUniqueViolation(err error, constraint string) bool {
	code, name, ok := pgError(err)
	if !ok || code != CodeUniqueViolation {
		return false
	}
	return constraint == "" || name == constraint
}

// IsExclusionViolation нарушение exclusion-ограничения (пересечение интервалов)
func IsExclusionViolation(err error, constraint string) bool {
	code, name, ok := pgError(err)
	if !ok || code != CodeExclusionViolation {
		return false
	}
	return constraint == "" || name == constraint
}

// IsTransient ошибка, которую имеет смысл повторить: конфликт сериализации,
// дедлок, обрыв или недоступность соединения
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Отмена запроса вызывающей стороной не повторяется
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if code, _, ok := pgError(err); ok {
		switch code {
		case CodeSerializationFailure, CodeDeadlockDetected,
			CodeAdminShutdown, CodeCrashShutdown, CodeCannotConnectNow, CodeTooManyConnections:
			return true
		}
		return strings.HasPrefix(code, classConnectionException)
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
