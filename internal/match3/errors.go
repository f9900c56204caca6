package match3

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSwap is reported for non-adjacent swaps and swaps without a match.
	ErrInvalidSwap = errors.New("match3: invalid swap")

	// ErrSpecialTileAlreadyUsed is reported when the wildcard was consumed in the current life.
	ErrSpecialTileAlreadyUsed = errors.New("match3: special tile already used")

	// ErrSessionBusy is reported when a cascade, reshuffle or flush is in flight.
	ErrSessionBusy = errors.New("match3: session busy")

	// ErrSessionNotRunning is reported for moves before Start or after EndSession.
	ErrSessionNotRunning = errors.New("match3: session not running")

	// ErrRewardFlushFailed wraps ledger failures from EndSession.
	ErrRewardFlushFailed = errors.New("match3: reward flush failed")
)

// Reason explains why a move was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotAdjacent
	ReasonNoMatch
	ReasonNoSpecial
	ReasonSpecialUsed
	ReasonBusy
	ReasonNotRunning
)

// String returns a short description of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotAdjacent:
		return "cells are not adjacent"
	case ReasonNoMatch:
		return "swap makes no match"
	case ReasonNoSpecial:
		return "no special tile on the board"
	case ReasonSpecialUsed:
		return "special tile already used"
	case ReasonBusy:
		return "session busy"
	case ReasonNotRunning:
		return "session not running"
	default:
		return "unknown"
	}
}

// Err maps the reason to its sentinel error, or nil for ReasonNone.
func (r Reason) Err() error {
	switch r {
	case ReasonNone:
		return nil
	case ReasonNotAdjacent, ReasonNoMatch, ReasonNoSpecial:
		return ErrInvalidSwap
	case ReasonSpecialUsed:
		return ErrSpecialTileAlreadyUsed
	case ReasonBusy:
		return ErrSessionBusy
	case ReasonNotRunning:
		return ErrSessionNotRunning
	default:
		return ErrInvalidSwap
	}
}

// RewardFlushError is returned by EndSession when the ledger rejects the payout.
// Total is the preserved reward so the caller can retry.
type RewardFlushError struct {
	Total int
	Err   error
}

func (e *RewardFlushError) Error() string {
	return fmt.Sprintf("match3: reward flush of %d failed: %v", e.Total, e.Err)
}

// Unwrap exposes both ErrRewardFlushFailed and the ledger's error.
func (e *RewardFlushError) Unwrap() []error {
	return []error{ErrRewardFlushFailed, e.Err}
}
