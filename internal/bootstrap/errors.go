package bootstrap

import (
	"errors"
	"fmt"
	"runtime"
)

// stackBufferSize bounds the stack trace captured for fatal errors.
const stackBufferSize = 4096

// Exit codes of the name server process.
const (
	ExitOK             = 0
	ExitFailure        = -1
	ExitMissingHome    = -2
	ExitControllerInit = -3
)

// Kind classifies a bootstrap failure. Every kind maps to one exit code.
type Kind int

const (
	ArgumentError Kind = iota + 1
	ConfigFileError
	EnvironmentError
	LoggingInitError
	ControllerInitError
	UnexpectedError
)

func (k Kind) String() string {
	switch k {
	case ArgumentError:
		return "argument error"
	case ConfigFileError:
		return "config file error"
	case EnvironmentError:
		return "environment error"
	case LoggingInitError:
		return "logging init error"
	case ControllerInitError:
		return "controller init error"
	case UnexpectedError:
		return "unexpected error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ExitCode returns the process exit code for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case EnvironmentError:
		return ExitMissingHome
	case ControllerInitError:
		return ExitControllerInit
	default:
		return ExitFailure
	}
}

// Error is a classified bootstrap failure. Stack is set for the kinds that
// print a stack trace before exiting.
type Error struct {
	Err   error
	Stack string
	Kind  Kind
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the exit code of the error's kind.
func (e *Error) ExitCode() int { return e.Kind.ExitCode() }

func newError(kind Kind, err error) *Error {
	e := &Error{Kind: kind, Err: err}
	if kind == LoggingInitError || kind == UnexpectedError {
		e.Stack = captureStack()
	}
	return e
}

func errorf(kind Kind, format string, args ...any) *Error {
	return newError(kind, fmt.Errorf(format, args...))
}

// ExitCodeOf maps err to an exit code. nil is ExitOK and errors that were
// never classified are ExitFailure.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return ExitFailure
}

func captureStack() string {
	buf := make([]byte, stackBufferSize)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
