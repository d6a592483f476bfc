package repository

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xenking/studio-lights/internal/domain/store"
)

// SQLSTATE codes that map onto the store taxonomy.
const (
	codeUniqueViolation      = "23505"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
	codeTooManyConnections   = "53300"
	codeAdminShutdown        = "57P01"
	codeCrashShutdown        = "57P02"
	codeCannotConnectNow     = "57P03"
	classDataException       = "22"
	classConnectionException = "08"
)

// classify converts a driver error into the store taxonomy. Errors that fit
// no category are wrapped with op and returned as is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return &store.ConstraintError{Constraint: pgErr.ConstraintName, Err: err}
		case pgErr.Code == codeNotNullViolation:
			return store.Required(pgErr.ColumnName)
		case pgErr.Code == codeCheckViolation:
			return &store.ValidationError{Field: pgErr.ConstraintName, Reason: pgErr.Message}
		case strings.HasPrefix(pgErr.Code, classDataException):
			return &store.ValidationError{Field: pgErr.ColumnName, Reason: pgErr.Message}
		case strings.HasPrefix(pgErr.Code, classConnectionException),
			pgErr.Code == codeTooManyConnections,
			pgErr.Code == codeAdminShutdown,
			pgErr.Code == codeCrashShutdown,
			pgErr.Code == codeCannotConnectNow:
			return &store.UnavailableError{Op: op, Err: err}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if isTransient(err) {
		return &store.UnavailableError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isTransient reports connection-level failures that never reached the
// query executor. Caller cancellation is not transient.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
