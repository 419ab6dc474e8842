package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/etnz/papertrade"
)

// errorBody is the JSON body of every error response.
type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are sent, an encoding error cannot be reported anymore.
	_ = json.NewEncoder(w).Encode(data)
}

// statusOf maps an engine error to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, papertrade.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, papertrade.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, papertrade.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, papertrade.ErrInsufficientFunds),
		errors.Is(err, papertrade.ErrInsufficientHoldings),
		errors.Is(err, papertrade.ErrUnknownSymbol),
		errors.Is(err, papertrade.ErrCorruptLog):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err. Errors that are not engine errors are logged and
// hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var body errorBody
	status := statusOf(err)
	body.Error.Kind = papertrade.ErrorKind(err)
	body.Error.Message = err.Error()
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("unexpected error")
		body.Error.Kind = "internal"
		body.Error.Message = http.StatusText(status)
	}
	writeJSON(w, status, body)
}
