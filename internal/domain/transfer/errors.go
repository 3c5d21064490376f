package transfer

import "errors"

// Sentinel kinds for transfer validation failures. Every transition fails
// closed: when one of these is returned the squad was not mutated.
var (
	ErrQuotaExhausted       = errors.New("transfer quota exhausted")
	ErrInvalidReversal      = errors.New("invalid reversal")
	ErrUnknownCategory      = errors.New("unknown transfer category")
	ErrUnknownRole          = errors.New("unknown role")
	ErrPlayerNotInSquad     = errors.New("player not in squad")
	ErrPlayerAlreadyInSquad = errors.New("player already in squad")
)
