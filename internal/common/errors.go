// Package common defines shared sentinel errors used across the client and
// server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Capture errors. A capture failing with one of these never creates a record.
	ErrSubjectRequired      = errors.New("subject id is required")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrDecode               = errors.New("cannot decode content")

	// Sync engine flow control. Drain returns these when it does not start.
	ErrOffline        = errors.New("offline")
	ErrAlreadySyncing = errors.New("sync already in progress")

	// Upload endpoint errors.
	ErrUploadRejected = errors.New("upload rejected")

	// Validation / envelope errors.
	ErrorIncorrectMetadata = errors.New("incorrect metadata")
	ErrChecksumMismatch    = errors.New("checksum mismatch")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
