package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownIntent is returned when a context load finds no stored
	// record for the given intent id: the dialog expired, was closed,
	// or never existed.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrUnknownState is returned when a persisted state identifier
	// cannot be resolved against the registered state groups. Usually
	// means stored data predates the currently deployed states.
	ErrUnknownState = errors.New("unknown state")
)
