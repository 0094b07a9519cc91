package service

import "errors"

var (
	// ErrNothingSelected is returned when a bulk action has no rows.
	ErrNothingSelected = errors.New("nothing selected")

	// ErrNoAddress is returned when checkout is confirmed without an address.
	ErrNoAddress = errors.New("no shipping address selected")

	// ErrPasswordMismatch is returned when the signup passwords differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)
