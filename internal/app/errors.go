package service

import "errors"

// Sentinel kinds for service errors. Store failures surface as
// repository.ErrStorageRead / repository.ErrStorageWrite.
var (
	ErrBadUpload  = errors.New("bad upload")
	ErrNotStarted = errors.New("service not started")
)
