package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/irsalhamdi/lms/config"
	"github.com/irsalhamdi/lms/database"
)

func TestReadinessUnreachableDB(t *testing.T) {
	db, err := database.Open(config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       "127.0.0.1:1",
		Name:       "lms",
		DisableTLS: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	r := httptest.NewRequest(http.MethodGet, "/readiness", nil)
	w := httptest.NewRecorder()

	if err := handleReadiness(db)(context.Background(), w, r); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var got struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got.Status, "db not ready") {
		t.Fatalf("unexpected status %q", got.Status)
	}
}
