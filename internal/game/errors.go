package game

import "errors"

var (
	ErrSessionNotActive = errors.New("session_not_active")
	ErrGuessingPhase    = errors.New("guessing_phase")
	ErrNotParticipant   = errors.New("not_participant")
	ErrGuessesMissing   = errors.New("guesses_missing")
)
