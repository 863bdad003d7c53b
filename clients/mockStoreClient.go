package clients

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/festivo-org/concierge/models"
)

// MockStoreClient is an in-memory StoreClient for tests. It enforces the
// same uniqueness and pending-only transition rules as the mongo store so
// conflict handling can be tested without a database.
type MockStoreClient struct {
	mu          sync.Mutex
	doBad       bool
	invites     map[string]*models.Invite
	memberships map[string]*models.Membership
}

func NewMockStoreClient(doBad bool) *MockStoreClient {
	return &MockStoreClient{
		doBad:       doBad,
		invites:     map[string]*models.Invite{},
		memberships: map[string]*models.Membership{},
	}
}

func (d *MockStoreClient) Ping(ctx context.Context) error {
	if d.doBad {
		return errors.New("Ping failure")
	}
	return nil
}

func (d *MockStoreClient) InsertInvite(ctx context.Context, invite *models.Invite) error {
	if d.doBad {
		return errors.New("InsertInvite failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.invites {
		if existing.Token == invite.Token {
			return ErrDuplicateToken
		}
		if existing.Status == models.StatusPending &&
			existing.OwnerID == invite.OwnerID &&
			existing.InviteeEmail == invite.InviteeEmail {
			return ErrDuplicatePendingInvite
		}
	}

	copied := *invite
	d.invites[invite.ID] = &copied
	return nil
}

func (d *MockStoreClient) FindInviteByID(ctx context.Context, id string) (*models.Invite, error) {
	if d.doBad {
		return nil, errors.New("FindInviteByID failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if invite, ok := d.invites[id]; ok {
		copied := *invite
		return &copied, nil
	}
	return nil, nil
}

func (d *MockStoreClient) FindInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	if d.doBad {
		return nil, errors.New("FindInviteByToken failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, invite := range d.invites {
		if invite.Token == token {
			copied := *invite
			return &copied, nil
		}
	}
	return nil, nil
}

func (d *MockStoreClient) FindPendingInvite(ctx context.Context, ownerID, inviteeEmail string) (*models.Invite, error) {
	if d.doBad {
		return nil, errors.New("FindPendingInvite failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, invite := range d.invites {
		if invite.Status == models.StatusPending &&
			invite.OwnerID == ownerID &&
			invite.InviteeEmail == inviteeEmail {
			copied := *invite
			return &copied, nil
		}
	}
	return nil, nil
}

func (d *MockStoreClient) FindInvitesByOwner(ctx context.Context, ownerID string) ([]*models.Invite, error) {
	if d.doBad {
		return nil, errors.New("FindInvitesByOwner failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var results []*models.Invite
	for _, invite := range d.invites {
		if invite.OwnerID == ownerID {
			copied := *invite
			results = append(results, &copied)
		}
	}
	return results, nil
}

func (d *MockStoreClient) FindInvitesByEmail(ctx context.Context, inviteeEmail string, statuses []models.Status) ([]*models.Invite, error) {
	if d.doBad {
		return nil, errors.New("FindInvitesByEmail failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var results []*models.Invite
	for _, invite := range d.invites {
		if invite.InviteeEmail != inviteeEmail {
			continue
		}
		if len(statuses) > 0 && !statusIn(invite.Status, statuses) {
			continue
		}
		copied := *invite
		results = append(results, &copied)
	}
	return results, nil
}

func (d *MockStoreClient) TransitionInvite(ctx context.Context, id string, to models.Status) (*models.Invite, error) {
	if d.doBad {
		return nil, errors.New("TransitionInvite failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	invite, ok := d.invites[id]
	if !ok || invite.Status != models.StatusPending {
		return nil, ErrNotPending
	}

	invite.Status = to
	invite.Modified = time.Now().UTC()
	copied := *invite
	return &copied, nil
}

func (d *MockStoreClient) AcceptInvite(ctx context.Context, invite *models.Invite, membership *models.Membership) error {
	if d.doBad {
		return errors.New("AcceptInvite failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	stored, ok := d.invites[invite.ID]
	if !ok || stored.Status != models.StatusPending {
		return ErrNotPending
	}

	for _, existing := range d.memberships {
		if existing.OwnerID == membership.OwnerID && existing.MemberID == membership.MemberID {
			return ErrDuplicateMembership
		}
	}

	stored.Status = models.StatusAccepted
	stored.Modified = time.Now().UTC()
	*invite = *stored

	copied := *membership
	d.memberships[membership.ID] = &copied
	return nil
}

func (d *MockStoreClient) FindMembershipByEmail(ctx context.Context, ownerID, memberEmail string) (*models.Membership, error) {
	if d.doBad {
		return nil, errors.New("FindMembershipByEmail failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, membership := range d.memberships {
		if membership.OwnerID == ownerID && membership.MemberEmail == memberEmail {
			copied := *membership
			return &copied, nil
		}
	}
	return nil, nil
}

func (d *MockStoreClient) FindMembershipsByOwner(ctx context.Context, ownerID string) ([]*models.Membership, error) {
	if d.doBad {
		return nil, errors.New("FindMembershipsByOwner failure")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var results []*models.Membership
	for _, membership := range d.memberships {
		if membership.OwnerID == ownerID {
			copied := *membership
			results = append(results, &copied)
		}
	}
	return results, nil
}

func statusIn(status models.Status, statuses []models.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
