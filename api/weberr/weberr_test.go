package weberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatus(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"plain", base, http.StatusInternalServerError},
		{"not found", NotFound(base), http.StatusNotFound},
		{"wrapped forbidden", fmt.Errorf("ctx: %w", Forbidden(base)), http.StatusForbidden},
		{"too many", TooManyRequests(base), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, got)
			}
		})
	}
}

func TestResponseBody(t *testing.T) {
	err := BadRequest(errors.New("title is a required field"))

	body, status, ok := Response(err)
	if !ok || status != http.StatusBadRequest {
		t.Fatalf("unexpected response %v %d", ok, status)
	}

	want := &ErrorResponse{Error: "title is a required field"}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}

	var re *RequestError
	if !errors.As(err, &re) || re.Error() != "title is a required field" {
		t.Fatalf("request error lost: %v", err)
	}
}

func TestFields(t *testing.T) {
	base := errors.New("boom")

	if _, ok := Fields(base); ok {
		t.Fatal("plain error should carry no fields")
	}

	inner := Wrap(base, WithFields(map[string]any{"course_id": "c1", "user_id": "inner"}))
	outer := Wrap(fmt.Errorf("ctx: %w", inner), WithFields(map[string]any{"user_id": "outer"}))

	got, ok := Fields(outer)
	if !ok {
		t.Fatal("expected fields")
	}

	want := map[string]any{"course_id": "c1", "user_id": "outer"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}
