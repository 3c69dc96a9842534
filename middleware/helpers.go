package middleware

import (
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// unauthorized отвечает 401 в том же формате, что и обработчики API.
func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	js, err := json.Marshal(errorBody{Success: false, Error: message})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode auth error", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(append(js, '\n'))
}
