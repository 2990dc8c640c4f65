package masterdata

import "errors"

var (
	ErrUnknownEntity  = errors.New("unknown entity")
	ErrUnknownField   = errors.New("unknown field")
	ErrRecordNotFound = errors.New("record not found")
	ErrSubmitInFlight = errors.New("a submit is already in progress")
)
