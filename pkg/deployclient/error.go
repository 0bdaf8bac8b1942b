package deployclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/serverless/platform-client/pkg/accesskeys"
	"github.com/serverless/platform-client/pkg/platform"
)

type ExitCode int

// Keep separate to avoid skewing exit codes
const (
	ExitSuccess ExitCode = iota
	ExitSaveFailure
	ExitUnauthenticated
	ExitUnavailable
	ExitInvocationFailure
	ExitInternalError
	ExitTemplateError
	ExitTimeout
)

type Error struct {
	Code ExitCode
	Err  error
}

func (err *Error) Error() string {
	return err.Err.Error()
}

func (err *Error) Unwrap() error {
	return err.Err
}

func Errorf(exitCode ExitCode, format string, args ...any) *Error {
	return &Error{
		Code: exitCode,
		Err:  fmt.Errorf(format, args...),
	}
}

func ErrorWrap(exitCode ExitCode, err error) *Error {
	return &Error{
		Code: exitCode,
		Err:  err,
	}
}

func ErrorExitCode(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	e := &Error{}
	if !errors.As(err, &e) {
		return ExitInternalError
	}
	return e.Code
}

// classify maps an error from the platform client onto an exit code.
func classify(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return Errorf(ExitTimeout, "deployment timed out: %w", ctx.Err())
	}

	if errors.Is(err, accesskeys.ErrNoAccessKey) {
		return ErrorWrap(ExitUnauthenticated, err)
	}

	respErr := &platform.ResponseError{}
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrorWrap(ExitUnauthenticated, err)
		}
		if respErr.StatusCode >= 500 {
			return ErrorWrap(ExitUnavailable, err)
		}
		return ErrorWrap(ExitSaveFailure, err)
	}

	urlErr := &url.Error{}
	if errors.As(err, &urlErr) {
		return ErrorWrap(ExitUnavailable, err)
	}

	return ErrorWrap(ExitSaveFailure, err)
}
