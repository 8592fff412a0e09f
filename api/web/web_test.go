package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"title":"Go"}`, true},
		{"empty", ``, false},
		{"unknown field", `{"title":"Go","price":1}`, false},
		{"trailing value", `{"title":"Go"}{"title":"Rust"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var p payload
			err := Decode(httptest.NewRecorder(), r, &p)
			if (err == nil) != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, err)
			}
			if tt.ok && p.Title != "Go" {
				t.Fatalf("unexpected payload %+v", p)
			}
		})
	}
}

func TestWrapMiddlewareOrder(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(h Handler) Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				calls = append(calls, name)
				return h(ctx, w, r)
			}
		}
	}

	h := WrapMiddleware([]Middleware{mark("outer"), nil, mark("inner")}, func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		calls = append(calls, "handler")
		return nil
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := h(r.Context(), httptest.NewRecorder(), r); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"outer", "inner", "handler"}, calls); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestRedirect(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/courses/1/enter", nil)
	w := httptest.NewRecorder()

	if err := Redirect(r.Context(), w, r, "/courses/1/scorm"); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/courses/1/scorm" {
		t.Fatalf("unexpected redirect %d %q", w.Code, w.Header().Get("Location"))
	}
}
