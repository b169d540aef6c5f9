package service

import "errors"

var (
	// ErrInvalidPosition means coordinates are missing, non-finite or out
	// of range.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrInvalidProfile means the activation payload lacks required
	// profile fields (gender, plausible age).
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrNotActive means the acting user has no live presence record.
	ErrNotActive = errors.New("presence not active")
	// ErrPeerUnavailable means the target of a buzz is absent (expired,
	// deactivated, or has ignored the caller - indistinguishable on
	// purpose).
	ErrPeerUnavailable = errors.New("peer unavailable")
	// ErrSelfBuzz rejects a user buzzing themselves.
	ErrSelfBuzz = errors.New("cannot buzz yourself")
	// ErrNoPending means a decline referenced no outstanding buzz.
	ErrNoPending = errors.New("no pending buzz from that user")
)
