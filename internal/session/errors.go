package session

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAlreadySpinning  = errors.New("spin already in progress")
	ErrAlreadyReferred  = errors.New("referrer already recorded")
	ErrInvalidReferral  = errors.New("invalid referrer")
)
