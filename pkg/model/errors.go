package model

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy of the record store. Every failure is returned to the
// immediate caller as one of these classes; nothing is retried internally.
var (
	// ErrInvalidInput indicates the input failed validation, including a
	// record whose encoded form exceeds the size ceiling.
	ErrInvalidInput = goerr.New("invalid input")

	// ErrNotFound indicates the requested ID has no live record.
	ErrNotFound = goerr.New("record not found")

	// ErrMemoryFull indicates the durable medium rejected a write because
	// the underlying region cannot grow.
	ErrMemoryFull = goerr.New("memory full")
)
