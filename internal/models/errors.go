package models

import "errors"

var (
	// ErrInvalidCategory is returned for a category outside the fixed set
	ErrInvalidCategory = errors.New("invalid adventure category")

	ErrTooFewParticipants   = errors.New("at least two participants are required")
	ErrDuplicateParticipant = errors.New("participants must be distinct")
	ErrEmptyName            = errors.New("participant name must not be empty")
	ErrEmptyDate            = errors.New("date is required")
	ErrInvalidDate          = errors.New("date must be formatted YYYY-MM-DD")

	// ErrPersistence wraps any failure reading or writing the ledger or model artifact
	ErrPersistence = errors.New("persistence failure")
)
