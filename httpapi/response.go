package httpapi

import (
	"encoding/json"
	"net/http"

	authcore "github.com/lancerhq/authcore"
)

// errorBody is the status+message pair every failure is reduced to. Internal
// detail never reaches the response.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func statusForKind(kind authcore.Kind) int {
	switch kind {
	case authcore.KindConflict:
		return http.StatusConflict
	case authcore.KindUnauthorized:
		return http.StatusUnauthorized
	case authcore.KindBadRequest:
		return http.StatusBadRequest
	case authcore.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForKind(authcore.KindOf(err))
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	writeJSON(w, status, errorBody{StatusCode: status, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		StatusCode: http.StatusBadRequest,
		Message:    message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
