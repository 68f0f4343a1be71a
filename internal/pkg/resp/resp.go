/*
Package resp provides helpers for writing the relay's HTTP JSON responses.

The REST surface mirrors the upstream datastore's shapes: successful reads
return the payload itself (usually a bare array), failures return an
{"error": "..."} object with the matching HTTP status.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondJSON writes an arbitrary payload with the given HTTP status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondData writes a successful response (HTTP 200) with the payload as-is.
func RespondData(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondError writes an {"error": message} response using the error's HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	status := customErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	RespondJSON(w, r, status, ErrorBody{Error: customErr.Message})
}

// RespondDatastoreError maps a failed datastore call to an HTTP 500 response
// carrying the error text, matching the upstream pass-through contract.
func RespondDatastoreError(w http.ResponseWriter, r *http.Request, err error) {
	logx.Error(err, "Datastore query failed")
	RespondJSON(w, r, http.StatusInternalServerError, ErrorBody{Error: err.Error()})
}
