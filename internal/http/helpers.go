package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

// maxBodyBytes bounds selection/chat request bodies.
const maxBodyBytes = 1 << 16

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// decodeSelection handles the shared shape of the three selection handlers:
// POST only, JSON body, non-blank category.
func decodeSelection(w http.ResponseWriter, r *http.Request, v any, category *string) bool {
	if !requireMethod(w, r, http.MethodPost) {
		return false
	}
	if !decodeJSON(w, r, v) {
		return false
	}
	if strings.TrimSpace(*category) == "" {
		writeError(w, http.StatusBadRequest, "missing category")
		return false
	}
	return true
}
