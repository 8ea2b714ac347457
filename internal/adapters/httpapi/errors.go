package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Overland-East-Bay/scoring-api/internal/app/dispatch"
)

type successEnvelope struct {
	Code     int `json:"code"`
	Response any `json:"response"`
}

type errorEnvelope struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeResponse(w http.ResponseWriter, response any) {
	writeJSON(w, http.StatusOK, successEnvelope{Code: http.StatusOK, Response: response})
}

// writeError answers with the error envelope. An empty message falls back to the status text.
func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = dispatch.StatusText(status)
	}
	writeJSON(w, status, errorEnvelope{Code: status, Error: message})
}
