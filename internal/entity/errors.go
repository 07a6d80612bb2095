package entity

import "errors"

var (
	// Event errors
	ErrEventNotFound   = errors.New("event not found")
	ErrEventConflict   = errors.New("event was modified concurrently")
	ErrInvalidTimeSpan = errors.New("end time must be later than start time")
	ErrInvalidStatus   = errors.New("invalid event status")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Subscription errors
	ErrSubscriptionNotFound = errors.New("push subscription not found")
	ErrInvalidSubscription  = errors.New("invalid subscription object")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized access")
)
