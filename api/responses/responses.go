package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/splitpocket/splitpocket-sync/pkg/errors"
	"github.com/splitpocket/splitpocket-sync/pkg/logger"
	"github.com/splitpocket/splitpocket-sync/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	msg := pkgerrors.MetadataFor(typed.Code()).PublicMessage
	if m := typed.Message(); m != "" {
		msg = m
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}
	if details := typed.Details(); details != nil {
		payload.Error.Details = details
	}

	if logg != nil {
		logg.Error(logg.WithField(ctx, "error_code", string(typed.Code())), "request failed", err)
	}

	writeJSON(w, statusFor(typed.Code()), payload)
}

func statusFor(code pkgerrors.Code) int {
	switch code {
	case pkgerrors.CodeValidation, pkgerrors.CodeBadRequest:
		return http.StatusBadRequest
	case pkgerrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case pkgerrors.CodeNotFound:
		return http.StatusNotFound
	case pkgerrors.CodeUnsupportedOperation:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
