package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"roombooking/internal/fault"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

// WriteFault maps a domain error onto the envelope. Errors outside the
// fault taxonomy are reported as a generic internal error so storage
// details never leak to the caller.
func WriteFault(w http.ResponseWriter, err error) {
	var fe *fault.Error
	if errors.As(err, &fe) {
		WriteError(w, fe.Kind.HTTPStatus(), fe.Code, fe.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
