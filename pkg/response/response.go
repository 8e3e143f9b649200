package response

import (
	"encoding/json"
	"errors"
	"net/http"

	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status: "success",
		Data:   data,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status:  "error",
		Message: msg,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// FromError maps domain errors onto HTTP statuses so handlers stay thin.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case xerrors.IsValidation(err):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, xerrors.ErrNoSession):
		Error(w, http.StatusUnauthorized, "sign in required")
	case errors.Is(err, xerrors.ErrNotVerified):
		Error(w, http.StatusForbidden, "verified profile required")
	case errors.Is(err, xerrors.ErrNoProfile):
		Error(w, http.StatusConflict, "profile not created yet")
	case errors.Is(err, xerrors.ErrStaleResult):
		Error(w, http.StatusConflict, "superseded by a newer request")
	case errors.Is(err, xerrors.ErrRecordMissing), errors.Is(err, xerrors.ErrNotFound):
		Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, xerrors.ErrInvalidTokens):
		Error(w, http.StatusUnauthorized, "invalid or expired tokens")
	default:
		Error(w, http.StatusInternalServerError, "unexpected error occurred")
	}
}
