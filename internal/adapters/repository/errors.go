package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound = errors.New("row not found")
	ErrConnect  = errors.New("database connect failed")
)
