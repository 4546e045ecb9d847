package service

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file's extension maps to no
	// known document type.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyHistory is returned when analysis is requested for a
	// conversation that has no turns yet.
	ErrEmptyHistory = errors.New("no history found for this conversation")
)
