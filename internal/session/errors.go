package session

import "errors"

var (
	// ErrNotFound is returned when a session cannot be found in the store.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned when a session has passed its lifetime and is no longer valid.
	ErrExpired = errors.New("session has expired")
	// ErrIDGeneration is returned when the random source fails to produce a session id.
	ErrIDGeneration = errors.New("failed to generate session id")
	// ErrSaveSession is returned when persisting a session to the store fails.
	ErrSaveSession = errors.New("failed to save session")
	// ErrDeleteSession is returned when deleting a session from the store fails.
	ErrDeleteSession = errors.New("failed to delete session")
)
