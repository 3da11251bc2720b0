package req

import (
	"net/http/httptest"
	"strings"
	"testing"

	"educonnect/internal/pkg/errs"
)

type sampleInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func bind(t *testing.T, contentType, body string) *errs.CustomError {
	t.Helper()

	r := httptest.NewRequest("POST", "/api/test", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}

	var dst sampleInput
	return BindJSON(httptest.NewRecorder(), r, &dst)
}

// TestBindJSONSuccess covers a well-formed body.
func TestBindJSONSuccess(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/test", strings.NewReader(`{"name":"Alice","email":"a@b.c"}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	var dst sampleInput
	if customErr := BindJSON(httptest.NewRecorder(), r, &dst); customErr != nil {
		t.Fatalf("BindJSON failed: %+v", customErr)
	}
	if dst.Name != "Alice" || dst.Email != "a@b.c" {
		t.Errorf("Unexpected bound values: %+v", dst)
	}
}

// TestBindJSONRejectsWrongContentType verifies non-JSON content types are refused.
func TestBindJSONRejectsWrongContentType(t *testing.T) {
	customErr := bind(t, "text/plain", `{"name":"Alice"}`)
	if customErr == nil || customErr.Code != errs.ErrUnsupportedMediaType {
		t.Errorf("Expected ErrUnsupportedMediaType, got %+v", customErr)
	}
}

// TestBindJSONRejectsUnknownFields verifies strict decoding.
func TestBindJSONRejectsUnknownFields(t *testing.T) {
	customErr := bind(t, "application/json", `{"name":"Alice","admin":true}`)
	if customErr == nil || customErr.Code != errs.ErrInvalidJSONFormat {
		t.Errorf("Expected ErrInvalidJSONFormat for unknown field, got %+v", customErr)
	}
}

// TestBindJSONRejectsTrailingContent verifies extra JSON after the document is refused.
func TestBindJSONRejectsTrailingContent(t *testing.T) {
	customErr := bind(t, "application/json", `{"name":"Alice"}{"name":"Bob"}`)
	if customErr == nil || customErr.Code != errs.ErrExtraContentInBody {
		t.Errorf("Expected ErrExtraContentInBody, got %+v", customErr)
	}
}

// TestBindJSONRejectsMalformedBody verifies broken JSON is refused.
func TestBindJSONRejectsMalformedBody(t *testing.T) {
	customErr := bind(t, "application/json", `{"name":`)
	if customErr == nil || customErr.Code != errs.ErrInvalidJSONFormat {
		t.Errorf("Expected ErrInvalidJSONFormat, got %+v", customErr)
	}
}
