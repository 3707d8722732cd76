package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/bridge-api/internal/errs"
	"github.com/deppfellow/bridge-api/internal/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
)

func httpError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *errs.HTTPError, got %T (%v)", err, err)
	}
	return httpErr
}

func TestMapCode(t *testing.T) {
	cases := map[string]Code{
		"23505": UniqueViolation,
		"42703": UndefinedColumn,
		"42P01": UndefinedTable,
		"57014": QueryCanceled,
		"08006": ConnectionFailure,
		"08001": ConnectionFailure,
		"22P02": InvalidTextRepresentation,
		"XX000": Other,
		"":      Other,
	}
	for state, want := range cases {
		if got := MapCode(state); got != want {
			t.Fatalf("MapCode(%q): expected %s, got %s", state, want, got)
		}
	}
}

func TestMapSeverity(t *testing.T) {
	if MapSeverity("FATAL") != SeverityFatal {
		t.Fatalf("expected FATAL")
	}
	if MapSeverity("whatever") != SeverityError {
		t.Fatalf("unknown severities should map to ERROR")
	}
}

func TestConvertPgError_Unwraps(t *testing.T) {
	pgerr := &pgconn.PgError{Code: "42703", Severity: "ERROR", Message: `column "Stage" does not exist`}
	converted := ConvertPgError(pgerr)

	if converted.Code != UndefinedColumn {
		t.Fatalf("unexpected code %s", converted.Code)
	}
	if !errors.Is(converted, pgerr) {
		t.Fatalf("converted error should unwrap to the driver error")
	}
	if ErrCode(fmt.Errorf("wrapped: %w", converted)) != UndefinedColumn {
		t.Fatalf("ErrCode should see through wrapping")
	}
	if ErrCode(pgerr) != UndefinedColumn {
		t.Fatalf("ErrCode should map raw PgError")
	}
	if ErrCode(errors.New("plain")) != Other {
		t.Fatalf("plain errors should be Other")
	}
}

func TestHandleError_SchemaDrift(t *testing.T) {
	err := HandleError(pkgerrors.Wrap(fmt.Errorf("%w: row has 44 values", schema.ErrSchemaDrift), "fetch all"))
	httpErr := httpError(t, err)

	if httpErr.Status != http.StatusInternalServerError || httpErr.Code != SchemaMismatchCode {
		t.Fatalf("unexpected error: %+v", httpErr)
	}
}

func TestHandleError_UndefinedColumnIsDrift(t *testing.T) {
	err := HandleError(&pgconn.PgError{Code: "42703"})
	if httpError(t, err).Code != SchemaMismatchCode {
		t.Fatalf("expected schema mismatch")
	}
}

func TestHandleError_Unavailable(t *testing.T) {
	for _, err := range []error{
		context.DeadlineExceeded,
		pkgerrors.Wrap(context.DeadlineExceeded, "query"),
		&pgconn.PgError{Code: "57014"},
		&pgconn.PgError{Code: "08006"},
	} {
		if status := httpError(t, HandleError(err)).Status; status != http.StatusServiceUnavailable {
			t.Fatalf("%v: expected 503, got %d", err, status)
		}
	}
}

func TestHandleError_InvalidValue(t *testing.T) {
	err := HandleError(&pgconn.PgError{Code: "22P02", DataTypeName: "double_precision"})
	httpErr := httpError(t, err)

	if httpErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", httpErr.Status)
	}
	if httpErr.Message != "The Double Precision value is invalid" {
		t.Fatalf("unexpected message %q", httpErr.Message)
	}
}

func TestHandleError_Passthrough(t *testing.T) {
	original := errs.NewBadRequestError("nope", true, nil, nil)
	if HandleError(original) != error(original) {
		t.Fatalf("HTTPError should pass through unchanged")
	}
}

func TestHandleError_Fallbacks(t *testing.T) {
	if httpError(t, HandleError(pgx.ErrNoRows)).Status != http.StatusNotFound {
		t.Fatalf("ErrNoRows should map to 404")
	}

	httpErr := httpError(t, HandleError(errors.New("boom")))
	if httpErr.Status != http.StatusInternalServerError || httpErr.Message == "boom" {
		t.Fatalf("unknown errors must be a generic 500, got %+v", httpErr)
	}
}
