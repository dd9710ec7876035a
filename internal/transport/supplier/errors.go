package supplier

import (
	"errors"
	"fmt"
)

var (
	ErrUnmappedProduct  = errors.New("provider has no supplier product code")
	ErrUnparsableVolume = errors.New("cannot parse bundle volume")
	ErrUnknownEncoding  = errors.New("unknown supplier encoding")
)

// RejectedError поставщик ответил статусом вне 2xx.
type RejectedError struct {
	StatusCode int
	Body       string
}

func NewRejectedError(code int, body string) *RejectedError {
	return &RejectedError{StatusCode: code, Body: body}
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("supplier rejected order with status %d: %s", e.StatusCode, e.Body)
}

// UnreachableError запрос не дошел до поставщика или не дождался ответа.
type UnreachableError struct {
	Err error
}

func NewUnreachableError(err error) *UnreachableError {
	return &UnreachableError{Err: err}
}

func (e *UnreachableError) Error() string {
	return "supplier unreachable: " + e.Err.Error()
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}
