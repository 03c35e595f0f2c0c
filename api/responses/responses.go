package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
	"github.com/offgriddoc/cablebuilder/pkg/logger"
	"github.com/offgriddoc/cablebuilder/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta := classify(err)
	logError(ctx, logg, err, typed)

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: typed.PublicMessage(),
		},
	}
	setRetryAfter(w, meta)
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}
	WriteJSON(w, meta.HTTPStatus, payload)
}

// WriteStorefrontError writes the flat {error, message} body the storefront
// builder reads. With a non-empty errorKey the key goes in error and the public
// message in message; otherwise the public message is the error itself.
func WriteStorefrontError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, errorKey string, err error) {
	typed, meta := classify(err)
	logError(ctx, logg, err, typed)

	msg := typed.PublicMessage()
	payload := types.StorefrontError{Error: msg}
	if errorKey != "" {
		payload = types.StorefrontError{Error: errorKey, Message: msg}
	}
	setRetryAfter(w, meta)
	WriteJSON(w, meta.HTTPStatus, payload)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

func classify(err error) (*pkgerrors.Error, pkgerrors.Metadata) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	return typed, pkgerrors.MetadataFor(typed.Code())
}

func setRetryAfter(w http.ResponseWriter, meta pkgerrors.Metadata) {
	if meta.Retryable && meta.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(meta.RetryAfter.Seconds())))
	}
}

func logError(ctx context.Context, logg *logger.Logger, err error, typed *pkgerrors.Error) {
	if logg == nil {
		return
	}
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"error":       dump.TopMessage,
		"error_code":  typed.Code(),
		"error_chain": dump.Chain,
	}
	if d, ok := typed.Details().(map[string]any); ok {
		if skus, ok := d["skus"]; ok {
			fields["skus"] = skus
		}
	}
	ctx = logg.WithFields(ctx, fields)
	logg.Error(ctx, "request.error", err)
}
