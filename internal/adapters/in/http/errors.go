package http

import (
	"errors"
	"net/http"

	"shiptrack/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	codeInvalidInput      = "InvalidInput"
	codeNotFound          = "NotFound"
	codeReferenceNotFound = "ReferenceNotFound"
	codeInvalidState      = "InvalidState"
	codeIllegalTransition = "IllegalTransition"
	codeConflict          = "Conflict"
	codeInternal          = "Internal"
)

// classify maps an application error onto its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, errs.ErrReferenceNotFound):
		return http.StatusUnprocessableEntity, codeReferenceNotFound
	case errors.Is(err, errs.ErrStateIsInvalid):
		return http.StatusConflict, codeInvalidState
	case errors.Is(err, errs.ErrTransitionIsIllegal):
		return http.StatusConflict, codeIllegalTransition
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict, codeConflict
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func (s *Server) fail(ctx echo.Context, err error) error {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
		return ctx.JSON(status, Error{Code: code, Message: "internal error"})
	}
	return ctx.JSON(status, Error{Code: code, Message: err.Error()})
}
