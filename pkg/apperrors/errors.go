package apperrors

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrSnapshotExists         = errors.New("snapshot already exists for this date")
	ErrNoCredentials          = errors.New("no integration credentials configured")
	ErrCredentialsKeyMismatch = errors.New("integration credentials were encrypted with a different key")
	ErrRunCapReached          = errors.New("run account cap reached")
	ErrRunInProgress          = errors.New("an analysis run is already in progress")
)
