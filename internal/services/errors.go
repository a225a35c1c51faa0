package services

import "errors"

// Dashboard service errors
var (
	// Selection errors
	ErrUnknownRegion = errors.New("unknown region")
	ErrStateRequired = errors.New("a state must be selected")

	// Chart errors
	ErrUnknownChart = errors.New("unknown chart kind")

	// Export errors
	ErrUnknownFormat = errors.New("unknown export format")
)
