package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handlers := NewHandlers(nil)
	handlers.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Health() status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Health() content type = %q, want application/json", ct)
	}
	want := `{"status":"ok"}` + "\n"
	if w.Body.String() != want {
		t.Errorf("Health() body = %q, want %q", w.Body.String(), want)
	}
}
