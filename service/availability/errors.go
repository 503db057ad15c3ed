package availability

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	ErrInvalidRange   ErrCode = "INVALID_RANGE"
	ErrEntityNotFound ErrCode = "ENTITY_NOT_FOUND"
	ErrInvalidEntity  ErrCode = "INVALID_ENTITY"
	ErrInvalidBundle  ErrCode = "INVALID_BUNDLE"
)

type codedError struct {
	code ErrCode
	msg  string
	err  error
}

func (e codedError) Error() string {
	if e.msg == "" {
		return string(e.code)
	}
	return string(e.code) + ": " + e.msg
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.err }

func makeErr(c ErrCode, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

func wrap(c ErrCode, err error) error {
	return codedError{code: c, msg: err.Error(), err: err}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
