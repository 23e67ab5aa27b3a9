package constants

import (
	"errors"
	"net/http"
)

// CodedError is an error which knows the HTTP status it should be reported with.
type CodedError struct {
	msg  string
	code int
}

func NewCodedError(msg string, code int) *CodedError {
	return &CodedError{msg: msg, code: code}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound   = NewCodedError("not found in db", http.StatusNotFound)
	ErrDBConflict   = NewCodedError("already exists in db", http.StatusConflict)
	ErrDBMissingRef = NewCodedError("references a missing row", http.StatusUnprocessableEntity)

	ErrJobNotFound  = NewCodedError("job not found", http.StatusNotFound)
	ErrEmptyFiles   = NewCodedError("no files to process", http.StatusBadRequest)
	ErrQueueFull    = NewCodedError("job queue is full", http.StatusServiceUnavailable)
	ErrRunnerClosed = NewCodedError("job runner is stopped", http.StatusServiceUnavailable)

	ErrNilDocument = errors.New("nil document")
)
