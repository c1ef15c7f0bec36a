package gsheets

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.alis.build/gsheets/retry"
	"google.golang.org/api/googleapi"
)

var (
	// ErrNotFound is returned when a spreadsheet, worksheet or revision does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when adding a worksheet whose title is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNoWorksheet is returned by operations that need an active worksheet when there is none.
	ErrNoWorksheet = errors.New("no active worksheet")
	// ErrInvalidArgument is returned for malformed requests.
	ErrInvalidArgument = errors.New("invalid argument")
)

// RemoteError is returned by the Google collaborators. It carries the (kind, code) pair used by the
// retry executor; transport failures without an HTTP status have no code and are not retried.
type RemoteError struct {
	Kind string
	Code int
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Classification implements retry.Classified.
func (e *RemoteError) Classification() (retry.Classification, bool) {
	if e.Kind == "" || e.Code == 0 {
		return retry.Classification{}, false
	}
	return retry.Classification{Kind: e.Kind, Code: e.Code}, true
}

// remoteError wraps err as a *RemoteError for op, classifying googleapi errors by their HTTP code.
func remoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	re := &RemoteError{Op: op, Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		re.Kind = retry.KindGoogleAPI
		re.Code = apiErr.Code
	}
	return re
}

func remoteCode(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func isNotFound(err error) bool {
	return remoteCode(err) == http.StatusNotFound
}

// isDuplicateSheet recognises the 400 returned by addSheet for a taken title.
func isDuplicateSheet(err error) bool {
	return remoteCode(err) == http.StatusBadRequest && strings.Contains(err.Error(), "already exists")
}

func notFound(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrNotFound, what, err)
}
