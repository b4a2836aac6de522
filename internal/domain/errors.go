package domain

import "errors"

var (
	ErrResolution            = errors.New("identifier resolution failed")
	ErrNotAChannel           = errors.New("resolved entity is not a channel")
	ErrUnsupportedIdentifier = errors.New("unsupported identifier")
	ErrEmptyHistory          = errors.New("channel has no messages")
)
