package errors

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid import request")
	ErrNameMissing         = errors.New("first and last name are required")
	ErrParticipantNotFound = errors.New("no participant matches the given name")
	ErrSeatNotFound        = errors.New("seat label does not exist")
	ErrSeatAlreadyAssigned = errors.New("seat is already bound to another keypad")
	ErrKeypadAlreadyExists = errors.New("keypad id is already registered")
)
