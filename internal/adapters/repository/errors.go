package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")
	ErrNilDocument  = errors.New("nil document")
)
