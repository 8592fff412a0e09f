package access

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/core/claims"
)

const courseUUID = "6f1c1f1e-3c55-4c7e-8f55-0b3f7f1b2a10"

func call(t *testing.T, h web.Handler, userID string, courseID string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/courses/"+courseID+"/enter", nil)
	r = mux.SetURLVars(r, map[string]string{"id": courseID})

	ctx := r.Context()
	if userID != "" {
		ctx = claims.Set(ctx, claims.Claims{UserID: userID, Role: claims.RoleUser})
	}

	w := httptest.NewRecorder()
	if err := h(ctx, w, r.WithContext(ctx)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return w
}

func TestHandleEnter(t *testing.T) {
	e := newEnv(published(courseUUID, ch("ch2", 2, true), ch("ch1", 1, true)))
	e.grant("U1", courseUUID)
	h := HandleEnter(e.rs)

	tests := []struct {
		name     string
		userID   string
		courseID string
		location string
	}{
		{"owner", "U1", courseUUID, "/courses/" + courseUUID + "/chapters/ch1"},
		{"anonymous", "", courseUUID, "/"},
		{"malformed id", "U1", "not-an-id", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(t, h, tt.userID, tt.courseID)

			if w.Code != http.StatusSeeOther {
				t.Fatalf("expected status %d, got %d", http.StatusSeeOther, w.Code)
			}
			if loc := w.Header().Get("Location"); loc != tt.location {
				t.Fatalf("expected redirect to %q, got %q", tt.location, loc)
			}
		})
	}
}

func TestHandleShow(t *testing.T) {
	e := newEnv(published(courseUUID, ch("ch1", 1, true)))
	e.grant("U1", courseUUID)

	w := call(t, HandleShow(e.rs), "U1", courseUUID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var got struct {
		IsPurchased bool   `json:"isPurchased"`
		Progress    *int   `json:"progress"`
		Target      string `json:"target"`
		Decision    struct {
			Kind string `json:"kind"`
		} `json:"decision"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}

	if !got.IsPurchased || got.Progress == nil || *got.Progress != 40 {
		t.Fatalf("unexpected access view %+v", got)
	}
	if got.Decision.Kind != "chapter" || got.Target != "/courses/"+courseUUID+"/chapters/ch1" {
		t.Fatalf("unexpected routing %+v", got)
	}
}
