package response

import (
	"encoding/json"
	"net/http"
)

// ErrorMessage is the TestRail error body: {"error": "..."}.
type ErrorMessage struct {
	Message    string `json:"error"`
	StatusCode int    `json:"-"`
}

func WriteError(w http.ResponseWriter, err ErrorMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(err)
}

func WriteSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
