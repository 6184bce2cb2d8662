package game

import "errors"

// ErrInvalidAction covers any rule-level rejection of a submitted action:
// wrong player, wrong phase, amount out of range, raise below minimum, or
// the FLHE bet cap. The caller's GameState is left unchanged.
var ErrInvalidAction = errors.New("game: invalid action")

// ErrInvariant wraps a detected violation of a GameState invariant (pot
// total mismatch, unknown player in hand). Unlike ErrInvalidAction this is
// never expected during normal play; the orchestrator aborts the hand when
// it sees one.
var ErrInvariant = errors.New("game: invariant violation")
