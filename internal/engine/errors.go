package engine

import "fmt"

// Kind tags the broad category of a failure (spec §7's taxonomy).
type Kind int

const (
	// KindNone means no error; the zero value of Kind, matching spec §3's
	// "tag zero means OK" for ErrorInfo.
	KindNone Kind = iota
	KindConfiguration
	KindRuntime
	KindNetwork
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfiguration:
		return "configuration"
	case KindRuntime:
		return "runtime"
	case KindNetwork:
		return "network"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Code names one of the concrete error identifiers spec §7 lists per kind.
type Code string

const (
	CodeInvalidConfig  Code = "InvalidConfig"
	CodeModelNotFound  Code = "ModelNotFound"
	CodeUnsupportedLang Code = "UnsupportedLang"
	CodeInvalidText    Code = "InvalidText"
	CodeTextTooLong    Code = "TextTooLong"

	CodeNotInitialized   Code = "NotInitialized"
	CodeAlreadyStarted   Code = "AlreadyStarted"
	CodeSynthesisFailed  Code = "SynthesisFailed"
	CodeTimeout          Code = "Timeout"

	CodeFetchFailed  Code = "FetchFailed"
	CodeConnFailed   Code = "ConnectionFailed"
	CodeAuthFailed   Code = "AuthenticationFailed"

	CodeInternal     Code = "InternalError"
	CodeOutOfMemory  Code = "OutOfMemory"
	CodeFileWrite    Code = "FileWriteFailed"
)

// Error is the (kind, message, detail) triple spec §7 specifies: every
// public call returns either a success value or this carried alongside it.
// It implements the standard error interface so it composes with
// fmt.Errorf's %w verb while still exposing Kind/Code for callers that
// branch on the taxonomy.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s): %s: %s", e.Kind, e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func newError(kind Kind, code Code, message string, err error) *Error {
	e := &Error{Kind: kind, Code: code, Message: message}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

func configError(code Code, message string, err error) *Error {
	return newError(KindConfiguration, code, message, err)
}

func runtimeError(code Code, message string, err error) *Error {
	return newError(KindRuntime, code, message, err)
}

func networkError(code Code, message string, err error) *Error {
	return newError(KindNetwork, code, message, err)
}

func internalError(code Code, message string, err error) *Error {
	return newError(KindInternal, code, message, err)
}
