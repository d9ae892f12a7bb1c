package utilities

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/apperr"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a status code and an {"error": msg} body.
// Errors outside the apperr taxonomy are logged and answered with 500.
func WriteError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	status, msg, ok := apperr.HTTPStatus(err)
	if !ok {
		logger.Errorw("unhandled error", "err", err)
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	logger.Debugw("request failed", "status", status, "err", err)
	WriteJSON(w, status, map[string]string{"error": msg})
}
