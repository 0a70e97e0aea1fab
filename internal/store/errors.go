package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnsupportedDriver is returned for an unknown DATABASE_DRIVER
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
