package utils

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrPropertyNotFound       = errors.New("property not found")
	ErrBlockNotFound          = errors.New("block not found")
	ErrEmptyItinerary         = errors.New("no strong matches for these preferences")
	ErrGeocodeNotFound        = errors.New("no geocode results")
	ErrProviderUnavailable    = errors.New("provider unavailable")
	ErrUnexpectedBehaviorOfAI = errors.New("unexpected response from language model")
	ErrDatabaseError          = errors.New("database error")
)
