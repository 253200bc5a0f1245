package booking

import (
	"errors"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	// ErrInvalidTransition: the booking is not pending anymore. Callers
	// surface this as "already responded to".
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConflict: the store reported losing a conditional update race
	// distinctly from the guard failing. The Firestore store never
	// returns it (transaction retries land on ErrInvalidTransition),
	// but other stores may.
	ErrConflict         = errors.New("concurrency conflict")
	ErrNotExpired       = errors.New("response window still open")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrPaymentFailed    = errors.New("payment failed")
)

func IsErrBadRequest(err error) bool        { return errors.Is(err, ErrBadRequest) }
func IsErrNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsErrInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
func IsErrConflict(err error) bool          { return errors.Is(err, ErrConflict) }
func IsErrNotExpired(err error) bool        { return errors.Is(err, ErrNotExpired) }
func IsErrStoreUnavailable(err error) bool  { return errors.Is(err, ErrStoreUnavailable) }
func IsErrPaymentFailed(err error) bool     { return errors.Is(err, ErrPaymentFailed) }
