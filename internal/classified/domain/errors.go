package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrForbidden       = errors.New("caller does not own this listing")
	ErrListingNotFound = errors.New("listing not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidInput    = errors.New("invalid listing data")
	ErrPersistence     = errors.New("persistence failure")
	ErrNotConfigured   = errors.New("service is not configured")
)
