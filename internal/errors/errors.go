// Package errors holds the error values shared across packages. Errors
// local to one package stay there.
package errors

import (
	"errors"
	"fmt"
)

// ErrDateNotRecognized is returned by the date parser when input matches
// no known date form. Callers report it to the user; it is never fatal.
var ErrDateNotRecognized = errors.New("date not recognized")

// ErrCacheEmpty marks an order lookup against a cache that has not been
// filled yet, neither from the sheet nor from the persisted snapshot.
var ErrCacheEmpty = errors.New("order cache is empty")

// SheetError is a sheet fetch or parse failure with request context.
// StatusCode is zero when the request never got a response.
type SheetError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *SheetError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("sheet error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("sheet error (url=%s): %v", e.URL, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new sheet error.
func NewSheetError(url string, statusCode int, err error) *SheetError {
	return &SheetError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
