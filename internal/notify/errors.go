package notify

import "errors"

// ErrPermanent marks a failure that another delivery attempt cannot fix, such
// as a rejected push token or a job that was already partly delivered.
var ErrPermanent = errors.New("permanent notification failure")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() []error { return []error{ErrPermanent, e.err} }

// Permanent wraps err so that IsPermanent reports true. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or any error it wraps, is permanent.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}
