package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrConfigLoad means a stage configuration document could not be
	// loaded. Callers fall back to hardcoded defaults; never fatal.
	ErrConfigLoad = goerr.New("failed to load stage configuration")

	// ErrCredentialUnavailable means a secret could not be fetched.
	// The dependent analysis is skipped for the turn.
	ErrCredentialUnavailable = goerr.New("credential unavailable")

	// ErrModelCall means a secondary-intelligence call failed.
	// Degrades to a neutral result; never propagated to the caller.
	ErrModelCall = goerr.New("model call failed")

	// ErrResponseParse means a model response carried no usable JSON.
	// Same degrade path as ErrModelCall.
	ErrResponseParse = goerr.New("failed to parse model response")

	// ErrPersistence means a document store operation failed. Reads
	// surface as empty results; caller-requested writes propagate.
	ErrPersistence = goerr.New("document store operation failed")

	// ErrMalformedInput means an external payload failed boundary
	// validation and the turn cannot proceed.
	ErrMalformedInput = goerr.New("malformed input")
)
