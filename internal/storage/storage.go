package storage

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrAlreadyPaid       = errors.New("booking already paid")
	ErrBookingNotPending = errors.New("booking is not pending")
)
