// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package appfx

import "errors"

// The process exit codes shared by the postal commands.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitNotFound  = 3
	ExitTransport = 4
)

// ExitCoder is implemented by errors that carry their own exit code.
type ExitCoder interface {
	ExitCode() int
}

type exitCodeErr struct {
	error
	exitCode int
}

func (ece exitCodeErr) ExitCode() int {
	return ece.exitCode
}

func (ece exitCodeErr) Unwrap() error {
	return ece.error
}

// WithExitCode associates err with an exit code.  The returned error
// implements ExitCoder and unwraps to err.  A nil err yields nil.
func WithExitCode(err error, exitCode int) error {
	if err == nil {
		return nil
	}

	return exitCodeErr{
		error:    err,
		exitCode: exitCode,
	}
}

// Usage marks err as a command line usage error, exiting with ExitUsage.
func Usage(err error) error {
	return WithExitCode(err, ExitUsage)
}

// Classifier maps an error that carries no exit code onto one.  It
// returns false when it has no opinion about err.
type Classifier func(error) (int, bool)

// ExitCode determines the process exit code for err:
//
//   - nil is ExitOK
//   - an ExitCoder anywhere in the chain supplies its own code
//   - otherwise the first classifier that claims err decides
//   - anything left over is ExitFailure
func ExitCode(err error, classifiers ...Classifier) int {
	if err == nil {
		return ExitOK
	}

	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	for _, c := range classifiers {
		if code, ok := c(err); ok {
			return code
		}
	}

	return ExitFailure
}
