package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/rayanh/salary-tracker/internal/domain"
	"github.com/rayanh/salary-tracker/internal/pkg/ctxlog"
)

// Wire error codes. The set is closed; handlers never invent new ones.
const (
	CodeNotFound           = "EntityNotFound"
	CodeAlreadyExists      = "EntityAlreadyExists"
	CodeInvalidArguments   = "EntityInvalidArguments"
	CodePasswordsDontMatch = "PasswordsDoNotMatch"
	CodeAuthFailed         = "AuthFailed"
	CodeTokenInvalid       = "TokenInvalid"
	CodeTokenExpired       = "TokenExpired"
	CodeForbidden          = "Forbidden"
	CodeAppServer          = "AppServer"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrEntityNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrEntityAlreadyExists, http.StatusConflict, CodeAlreadyExists},
	{domain.ErrPasswordsDoNotMatch, http.StatusBadRequest, CodePasswordsDontMatch},
	{domain.ErrInvalidArguments, http.StatusBadRequest, CodeInvalidArguments},
	{domain.ErrAuthFailed, http.StatusUnauthorized, CodeAuthFailed},
	{domain.ErrTokenExpired, http.StatusUnauthorized, CodeTokenExpired},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, CodeTokenInvalid},
	{domain.ErrForbidden, http.StatusForbidden, CodeForbidden},
}

// HandleError is the sole translator from domain errors to HTTP responses.
// Unmapped errors are logged with full detail and surface as a generic 500;
// internals never reach the client.
func HandleError(ctx context.Context, w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			Error(w, m.status, m.code, err.Error())
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, CodeAppServer, "internal error")
}
