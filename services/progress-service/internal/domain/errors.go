package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput               = errors.New("invalid input")
	ErrNotEligible                = errors.New("not eligible for certificate")
	ErrConstraintViolation        = errors.New("constraint violation")
	ErrStoreUnavailable           = errors.New("store unavailable")
	ErrCertificateNumberExhausted = errors.New("could not allocate a unique certificate number")
)

// NotEligibleError carries the learner's current completion so callers can
// show it. It matches ErrNotEligible with errors.Is.
type NotEligibleError struct {
	Percentage int
	Reason     string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotEligible, e.Reason)
}

func (e *NotEligibleError) Is(target error) bool {
	return target == ErrNotEligible
}
