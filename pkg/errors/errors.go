package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "INVALID_INPUT"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeNotFound          Code = "ITEM_NOT_FOUND"
	CodeOutOfStock        Code = "OUT_OF_STOCK"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodePersistence       Code = "PERSISTENCE_FAILURE"
	CodeSync              Code = "SYNC_FAILURE"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:     http.StatusUnauthorized,
		Retryable:      false,
		PublicMessage:  "authentication required",
		DetailsAllowed: false,
	},
	CodeNotFound: {
		HTTPStatus:     http.StatusNotFound,
		Retryable:      false,
		PublicMessage:  "item not found",
		DetailsAllowed: false,
	},
	CodeOutOfStock: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "product is out of stock",
		DetailsAllowed: true,
	},
	CodeInsufficientStock: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "requested quantity exceeds available stock",
		DetailsAllowed: true,
	},
	CodePersistence: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      true,
		PublicMessage:  "local storage unavailable",
		DetailsAllowed: false,
	},
	CodeSync: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "remote sync unavailable",
		DetailsAllowed: false,
	},
	CodeInternal: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      true,
		PublicMessage:  "internal error",
		DetailsAllowed: false,
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
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

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
