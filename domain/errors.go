package domain

import "errors"

var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmptyMessage indicates the user submitted an empty message.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrNotMember indicates the user must join the wall before posting.
	ErrNotMember = errors.New("join the wall before posting")

	// ErrTranscodeFailed indicates server-side video processing failed after
	// the upload itself succeeded. Kept distinct from network failures.
	ErrTranscodeFailed = errors.New("video processing failed")

	// ErrUploadCancelled indicates the user cancelled an in-flight upload.
	ErrUploadCancelled = errors.New("upload cancelled")
)
