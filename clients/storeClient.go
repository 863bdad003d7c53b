package clients

import (
	"context"

	"github.com/pkg/errors"

	"github.com/festivo-org/concierge/models"
)

var (
	// ErrDuplicateToken is returned when an insert loses to the unique token
	// index. The caller may retry with a fresh token.
	ErrDuplicateToken = errors.New("an invite with this token already exists")

	// ErrDuplicatePendingInvite is returned when an insert loses to the
	// partial unique index on (ownerId, inviteeEmail) over pending invites.
	ErrDuplicatePendingInvite = errors.New("a pending invite for this owner and email already exists")

	// ErrNotPending is returned by conditional transitions when the invite
	// was no longer pending, i.e. another actor resolved it first.
	ErrNotPending = errors.New("the invite is no longer pending")

	// ErrDuplicateMembership is returned when the member already belongs to
	// the owner's team.
	ErrDuplicateMembership = errors.New("the user is already a member of this team")
)

type StoreClient interface {
	Ping(ctx context.Context) error

	InsertInvite(ctx context.Context, invite *models.Invite) error
	FindInviteByID(ctx context.Context, id string) (*models.Invite, error)
	FindInviteByToken(ctx context.Context, token string) (*models.Invite, error)
	FindPendingInvite(ctx context.Context, ownerID, inviteeEmail string) (*models.Invite, error)
	FindInvitesByOwner(ctx context.Context, ownerID string) ([]*models.Invite, error)
	FindInvitesByEmail(ctx context.Context, inviteeEmail string, statuses []models.Status) ([]*models.Invite, error)

	// TransitionInvite conditionally moves a pending invite to the given
	// status. It returns ErrNotPending when the invite was already resolved.
	TransitionInvite(ctx context.Context, id string, to models.Status) (*models.Invite, error)

	// AcceptInvite flips the pending invite to accepted and inserts the
	// membership in a single transaction.
	AcceptInvite(ctx context.Context, invite *models.Invite, membership *models.Membership) error

	FindMembershipByEmail(ctx context.Context, ownerID, memberEmail string) (*models.Membership, error)
	FindMembershipsByOwner(ctx context.Context, ownerID string) ([]*models.Membership, error)
}
