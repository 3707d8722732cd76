package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/bridge-api/internal/errs"
	"github.com/deppfellow/bridge-api/internal/schema"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SchemaMismatchCode is the response code used whenever the backing table
// no longer matches the column registry.
const SchemaMismatchCode = "SCHEMA_MISMATCH"

func schemaMismatch() error {
	return errs.NewInternalServerErrorWithCode(SchemaMismatchCode).
		WithMessage("The record table does not match the expected columns")
}

// ErrCode reports the mapped sqlerr.Code for a given error.
//
// Behavior:
//   - If err can be unwrapped into *sqlerr.Error or *pgconn.PgError, return its Code.
//   - Otherwise return sqlerr.Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into our custom sqlerr.Error.
//
// SQLSTATE and Severity are mapped into our enums for easier switching.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// formatUserFriendlyMessage produces an end-user-facing error message.
//
// This message is intended for clients / UI, not for logs.
func formatUserFriendlyMessage(sqlErr *Error) string {
	switch sqlErr.Code {
	case InvalidTextRepresentation, NumericValueOutOfRange:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = humanizeText(sqlErr.DataTypeName)
		}
		if fieldName == "" {
			return "One or more values are invalid"
		}
		return fmt.Sprintf("The %s value is invalid", fieldName)

	case QueryCanceled:
		return "The database did not answer in time"

	case ConnectionFailure, TooManyConnections, AdminShutdown:
		return "The database is currently unavailable"

	default:
		return "An error occurred while processing your request"
	}
}

// humanizeText converts snake_case (or lower-ish identifiers) into Title Case.
//
// Example:
//
//	"nearest_city" -> "Nearest City"
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a low-level database error into an application-level error.
//
// Output:
//   - If already *errs.HTTPError: returned unchanged
//   - Schema drift or an undefined table/column: 500 SCHEMA_MISMATCH
//   - Deadline, cancellation, or connection loss: 503
//   - Bad input values rejected by Postgres: 400
//   - If ErrNoRows: 404
//   - Otherwise: 500
//
// The original error is never exposed to the client; callers log it.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if errors.Is(err, schema.ErrSchemaDrift) {
		return schemaMismatch()
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case UndefinedColumn, UndefinedTable:
			return schemaMismatch()

		case QueryCanceled, ConnectionFailure, TooManyConnections, AdminShutdown:
			return errs.NewServiceUnavailableError(userMessage)

		case InvalidTextRepresentation, NumericValueOutOfRange:
			code := "INVALID_VALUE"
			return errs.NewBadRequestError(userMessage, true, &code, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return errs.NewServiceUnavailableError("The database did not answer in time")

	case errors.Is(err, context.Canceled):
		return errs.NewServiceUnavailableError("The request was cancelled")
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return errs.NewServiceUnavailableError("The database is currently unavailable")
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Record not found", true, nil)
	}

	return errs.NewInternalServerError()
}
