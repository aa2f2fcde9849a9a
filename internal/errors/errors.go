package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeStorageAccess Code = "STORAGE_ACCESS"
	CodeDecode        Code = "DECODE"
	CodeTableWrite    Code = "TABLE_WRITE"
	CodeTableRead     Code = "TABLE_READ"
	CodeEmailSend     Code = "EMAIL_SEND"
	CodeRender        Code = "RENDER"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Metadata describes how a failure of a given code is reported.
type Metadata struct {
	// Provider is true when the failure came back from a managed service call.
	Provider bool
	Summary  string
}

var metadataByCode = map[Code]Metadata{
	CodeStorageAccess: {Provider: true, Summary: "object storage access failed"},
	CodeDecode:        {Provider: false, Summary: "image could not be processed"},
	CodeTableWrite:    {Provider: true, Summary: "metadata write failed"},
	CodeTableRead:     {Provider: true, Summary: "metadata read failed"},
	CodeEmailSend:     {Provider: true, Summary: "email dispatch failed"},
	CodeRender:        {Provider: false, Summary: "report rendering failed"},
	CodeInternal:      {Provider: false, Summary: "unexpected error"},
}

// MetadataFor returns the reporting metadata of code, falling back to the
// internal error entry for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
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

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
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

// CodeOf returns the code of the outermost coded error in err's chain,
// CodeInternal for uncoded errors and "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}
