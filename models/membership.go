package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership is the durable record of an accepted invite. The invitee email
// is kept normalized on the record so the already-a-member guard stays a
// point lookup instead of an identity-provider round trip.
type Membership struct {
	ID          string    `json:"id" bson:"_id"`
	OwnerID     string    `json:"ownerId" bson:"ownerId"`
	MemberID    string    `json:"memberUserId" bson:"memberUserId"`
	MemberEmail string    `json:"memberEmail" bson:"memberEmail"`
	Role        Role      `json:"role" bson:"role"`
	InviteID    string    `json:"inviteId" bson:"inviteId"`
	Created     time.Time `json:"createdAt" bson:"created"`
}

//New membership from an accepted invite
func NewMembership(invite *Invite, memberID string) *Membership {
	return &Membership{
		ID:          uuid.NewString(),
		OwnerID:     invite.OwnerID,
		MemberID:    memberID,
		MemberEmail: invite.InviteeEmail,
		Role:        invite.Role,
		InviteID:    invite.ID,
		Created:     time.Now().UTC(),
	}
}
