package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeBadRequest           Code = "BAD_REQUEST"
	CodeNotFound             Code = "NOT_FOUND"
	CodeServerError          Code = "SERVER_ERROR"
	CodeDecoding             Code = "DECODING_ERROR"
	CodeNetwork              Code = "NETWORK_ERROR"
	CodeTimeout              Code = "TIMEOUT"
	CodeUnsupportedOperation Code = "UNSUPPORTED_OPERATION"
	CodeDurability           Code = "DURABILITY_ERROR"
	CodeInternal             Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:     false,
		PublicMessage: "validation failed",
	},
	CodeUnauthorized: {
		Retryable:     true,
		PublicMessage: "authentication required",
	},
	CodeBadRequest: {
		Retryable:     true,
		PublicMessage: "request rejected",
	},
	CodeNotFound: {
		Retryable:     true,
		PublicMessage: "resource not found",
	},
	CodeServerError: {
		Retryable:     true,
		PublicMessage: "remote server error",
	},
	CodeDecoding: {
		Retryable:     true,
		PublicMessage: "response could not be decoded",
	},
	CodeNetwork: {
		Retryable:     true,
		PublicMessage: "network unreachable",
	},
	CodeTimeout: {
		Retryable:     true,
		PublicMessage: "request timed out",
	},
	CodeUnsupportedOperation: {
		Retryable:     false,
		PublicMessage: "operation not supported",
	},
	CodeDurability: {
		Retryable:     false,
		PublicMessage: "local write could not be persisted",
	},
	CodeInternal: {
		Retryable:     true,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf extracts the typed code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}
