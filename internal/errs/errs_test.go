package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	if got := MakeUpperCaseWithUnderscores("Too Many Requests"); got != "TOO_MANY_REQUESTS" {
		t.Fatalf("unexpected code %q", got)
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    *HTTPError
		status int
		code   string
	}{
		{NewBadRequestError("bad", true, nil, nil), http.StatusBadRequest, "BAD_REQUEST"},
		{NewNotFoundError("gone", true, nil), http.StatusNotFound, "NOT_FOUND"},
		{NewTooManyRequestsError("slow"), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{NewInternalServerErrorWithCode("SCHEMA_MISMATCH"), http.StatusInternalServerError, "SCHEMA_MISMATCH"},
		{NewServiceUnavailableError("down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tc := range cases {
		if tc.err.Status != tc.status || tc.err.Code != tc.code {
			t.Fatalf("expected %d %s, got %d %s", tc.status, tc.code, tc.err.Status, tc.err.Code)
		}
	}

	code := "INVALID_VALUE"
	if NewBadRequestError("bad", true, &code, nil).Code != code {
		t.Fatalf("custom code ignored")
	}
}

func TestHTTPError_JSONShape(t *testing.T) {
	err := NewBadRequestError("Validation failed", true, nil, []FieldError{{Field: "project_code", Error: "is required"}})

	out, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("marshal: %v", marshalErr)
	}

	want := `{"code":"BAD_REQUEST","message":"Validation failed","status":400,"override":true,"errors":[{"field":"project_code","error":"is required"}]}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestHTTPError_WithMessageAndIs(t *testing.T) {
	original := NewInternalServerError()
	changed := original.WithMessage("other")

	if changed.Message != "other" || original.Message == "other" {
		t.Fatalf("WithMessage must copy, got %q / %q", changed.Message, original.Message)
	}
	if !errors.Is(changed, &HTTPError{}) {
		t.Fatalf("HTTPError should match any *HTTPError target")
	}
}
