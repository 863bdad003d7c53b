package team

import "github.com/pkg/errors"

// Sentinel errors for every way a lifecycle operation can be refused. The
// API layer maps these onto HTTP statuses; everything else surfaces as an
// internal failure.
var (
	ErrInvalidEmail = errors.New("the invitee email address is invalid")
	ErrInvalidRole  = errors.New("the requested role is not assignable")

	ErrNotAuthorized   = errors.New("not authorized for the requested operation")
	ErrPlanNotEntitled = errors.New("the account plan does not include team management")

	ErrInviteNotFound        = errors.New("no matching invite was found")
	ErrInviteExpired         = errors.New("the invite has expired")
	ErrInviteAlreadyResolved = errors.New("the invite has already been resolved")

	ErrDuplicateInvite = errors.New("a pending invite already exists for this email")
	ErrAlreadyMember   = errors.New("the user is already a member of this team")
)
