package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyURL      = errors.New("please insert a YouTube link")
	ErrInvalidURL    = errors.New("invalid URL, please insert a valid YouTube link")
	ErrInvalidGoal   = errors.New("please insert a valid positive number")
	ErrInvalidMonth  = errors.New("invalid month, expected YYYY-MM")
	ErrBusy          = errors.New("a video lookup is already in progress")
	ErrVideoNotFound = errors.New("video not found, please check the link and try again")
)

// ResolutionError reports a failed metadata lookup. Message is safe to show
// to the user.
type ResolutionError struct {
	Message string
	Err     error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// PersistError reports that writing a key to the storage medium failed after
// the in-memory mutation had completed.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
