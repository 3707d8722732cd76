package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/bridge-api/internal/errs"
	"github.com/labstack/echo/v4"
)

type lookupPayload struct {
	Code *string `json:"Code" validate:"required"`
}

func (p *lookupPayload) Validate() error {
	return ValidateStruct(p)
}

type customPayload struct{}

func (p *customPayload) Validate() error {
	return CustomValidationErrors{{Field: "code", Message: "looks wrong"}}
}

func newContext(body, contentType string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *errs.HTTPError, got %T (%v)", err, err)
	}
	return httpErr
}

func TestBindAndValidate_OK(t *testing.T) {
	p := &lookupPayload{}
	if err := BindAndValidate(newContext(`{"Code":"1007374"}`, echo.MIMEApplicationJSON), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Code == nil || *p.Code != "1007374" {
		t.Fatalf("payload not bound: %+v", p)
	}
}

func TestBindAndValidate_EmptyStringIsPresent(t *testing.T) {
	p := &lookupPayload{}
	if err := BindAndValidate(newContext(`{"Code":""}`, echo.MIMEApplicationJSON), p); err != nil {
		t.Fatalf("empty string should pass presence validation: %v", err)
	}
}

func TestBindAndValidate_MissingField(t *testing.T) {
	err := BindAndValidate(newContext(`{}`, echo.MIMEApplicationJSON), &lookupPayload{})
	httpErr := asHTTPError(t, err)

	if httpErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", httpErr.Status)
	}
	if len(httpErr.Errors) != 1 || httpErr.Errors[0].Field != "code" || httpErr.Errors[0].Error != "is required" {
		t.Fatalf("unexpected field errors: %+v", httpErr.Errors)
	}
}

func TestBindAndValidate_WrongType(t *testing.T) {
	err := BindAndValidate(newContext(`{"Code":1007374}`, echo.MIMEApplicationJSON), &lookupPayload{})
	httpErr := asHTTPError(t, err)

	if httpErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", httpErr.Status)
	}
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	err := BindAndValidate(newContext(`{"Code":`, echo.MIMEApplicationJSON), &lookupPayload{})
	if asHTTPError(t, err).Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON")
	}
}

func TestBindAndValidate_UnsupportedMediaType(t *testing.T) {
	err := BindAndValidate(newContext(`Code=1`, "text/plain"), &lookupPayload{})
	httpErr := asHTTPError(t, err)

	if httpErr.Status != http.StatusBadRequest || httpErr.Code != "UNSUPPORTED_MEDIA_TYPE" {
		t.Fatalf("unexpected error: %+v", httpErr)
	}
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	err := BindAndValidate(newContext(`{}`, echo.MIMEApplicationJSON), &customPayload{})
	httpErr := asHTTPError(t, err)

	if len(httpErr.Errors) != 1 || httpErr.Errors[0].Error != "looks wrong" {
		t.Fatalf("unexpected field errors: %+v", httpErr.Errors)
	}
}
