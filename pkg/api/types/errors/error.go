package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type ErrorResponse struct {
	Message ErrorMessage `json:"message"`
}

type ErrorMessage struct {
	Reason   string   `json:"reason"`
	Advice   string   `json:"advice,omitempty"`
	Problems []string `json:"problems,omitempty"`
	Cause    error    `json:"-"`
}

func (e ErrorMessage) String() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	lines = append(lines, e.Problems...)
	if e.Cause != nil {
		lines = append(lines, " caused by: "+e.Cause.Error())
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func WithProblems(problems []string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		in.Problems = problems
		return in
	}
}

func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}
	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest, "bad request",
		WithAdvice(advice), WithError(err),
	)
}

func Conflict(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusConflict, "conflict",
		WithAdvice(advice), WithError(err),
	)
}

func Unauthorized(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusUnauthorized, "unauthorized",
		WithAdvice(advice), WithError(err),
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError, "something wrong",
		WithError(err),
	)
}

func BadGateway(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadGateway, "backend storage failed",
		WithAdvice(advice), WithError(err),
	)
}

// FromError maps a domain error kind onto the HTTP status it stands for.
// A validation batch carries every problem it holds.
func FromError(err error) *echo.HTTPError {
	problems := new(domain.Problems)
	if errors.As(err, &problems) {
		return NewErrorMessage(
			http.StatusBadRequest, "bad request",
			WithProblems(problems.Each()), WithError(err),
		)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NewErrorMessage(
			http.StatusNotFound, "not found", WithError(err),
		)
	case errors.Is(err, domain.ErrConflict):
		return Conflict(err.Error(), err)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrTooMuch):
		return BadRequest(err.Error(), err)
	case errors.Is(err, domain.ErrStorage):
		return BadGateway(err.Error(), err)
	}
	return InternalServerError(err)
}
