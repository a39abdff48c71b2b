package league

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConflict    = errors.New("conflict")
	ErrInvalid     = errors.New("invalid input")
	ErrUnavailable = errors.New("store unavailable")
)

// Error is a typed failure carrying a human-readable reason.
type Error struct {
	kind   error
	reason string
}

func newError(kind error, reason string) *Error {
	return &Error{kind: kind, reason: reason}
}

func (e *Error) Error() string { return e.reason }

// Unwrap exposes the failure kind.
func (e *Error) Unwrap() error { return e.kind }

// Kind returns the failure kind.
func (e *Error) Kind() error { return e.kind }

// Reason returns the human-readable reason.
func (e *Error) Reason() string { return e.reason }

// ===== League Errors =====
var (
	ErrLeagueNotFound     = newError(ErrNotFound, "League not found")
	ErrSeasonRequired     = newError(ErrInvalid, "season id is required")
	ErrUserRequired       = newError(ErrInvalid, "user id is required")
	ErrLeagueNameRequired = newError(ErrInvalid, "league name is required")
	ErrLeagueNameTooLong  = newError(ErrInvalid, "league name exceeds maximum length")
	ErrLeagueDescTooLong  = newError(ErrInvalid, "league description exceeds maximum length")
)

// ===== Membership Errors =====
var (
	ErrMemberNotFound = newError(ErrNotFound, "Membership not found")
	ErrAlreadyMember  = newError(ErrConflict, "User is already a member of the league")
	ErrInvalidRole    = newError(ErrInvalid, "invalid league role")
	ErrMembersOnly    = newError(ErrForbidden, "Only league members can view members")
)

// ===== Invite Code Errors =====
var (
	ErrNotLeagueMember    = newError(ErrForbidden, "Only league members can create invite codes")
	ErrInsufficientRole   = newError(ErrForbidden, "Only league owners or admins can create invite codes")
	ErrInvalidInviteCode  = newError(ErrForbidden, "Invalid invite code")
	ErrInviteCodeRevoked  = newError(ErrForbidden, "Invite code has been revoked")
	ErrInviteCodeExpired  = newError(ErrForbidden, "Invite code has expired")
	ErrAlreadyJoined      = newError(ErrForbidden, "User is already a member of the league")
	ErrCodeSpaceExhausted = newError(ErrUnavailable, "could not generate a unique invite code")
)

// storeError tags a persistence failure as unavailable. Typed errors raised
// inside a transaction callback and errors already tagged pass through untouched.
func storeError(op string, err error) error {
	var typed *Error
	if errors.As(err, &typed) || errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
