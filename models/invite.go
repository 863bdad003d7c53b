package models

import (
	"crypto/rand"
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// Invite is an offer for the invitee to join the owner's team with the
	// given role. The token is the only capability the recipient holds, so
	// it is never serialized back out in responses.
	Invite struct {
		ID           string    `json:"id" bson:"_id"`
		OwnerID      string    `json:"ownerId" bson:"ownerId"`
		OwnerEmail   string    `json:"ownerEmail" bson:"ownerEmail"`
		InviteeEmail string    `json:"inviteeEmail" bson:"inviteeEmail"`
		Role         Role      `json:"role" bson:"role"`
		Token        string    `json:"-" bson:"token"`
		Status       Status    `json:"status" bson:"status"`
		ExpiresAt    time.Time `json:"expiresAt" bson:"expiresAt"`
		Created      time.Time `json:"createdAt" bson:"created"`
		Modified     time.Time `json:"modified,omitempty" bson:"modified,omitempty"`
	}

	//Enum type's
	Status string
	Role   string
)

const (
	//Available Status's
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"

	//Available Role's
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"

	// InviteDuration is how long a pending invite remains actionable.
	InviteDuration = 7 * 24 * time.Hour
)

// tokenLength is the number of random bytes behind an invite token. The
// base64url encoding of 32 bytes is 43 characters without padding.
const tokenLength = 32

//New invite with a freshly generated token, pending for the next 7 days
func NewInvite(ownerID, ownerEmail, inviteeEmail string, role Role) (*Invite, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invite := &Invite{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		OwnerEmail:   NormalizeEmail(ownerEmail),
		InviteeEmail: NormalizeEmail(inviteeEmail),
		Role:         role,
		Token:        token,
		Status:       StatusPending,
		ExpiresAt:    now.Add(InviteDuration),
		Created:      now,
	}

	return invite, nil
}

// NormalizeEmail lower-cases and trims an address so the same mailbox always
// compares equal, both in duplicate checks and in the store's unique index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (r Role) Valid() bool {
	return r == RoleEditor || r == RoleViewer
}

// Terminal reports whether a status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined || s == StatusCancelled || s == StatusExpired
}

// IsExpired is evaluated lazily on access; the stored status stays pending.
// The boundary is strict: an invite is still actionable at exactly expiresAt.
func (i *Invite) IsExpired() bool {
	return time.Now().UTC().After(i.ExpiresAt)
}

//Set a new status and update the modified time
func (i *Invite) UpdateStatus(newStatus Status) {
	i.Status = newStatus
	i.Modified = time.Now().UTC()
}

// ResetToken replaces the token after an insert lost to the token unique
// index. The id and creation attributes are left alone.
func (i *Invite) ResetToken() error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	i.Token = token
	return nil
}

func generateToken() (string, error) {
	rb := make([]byte, tokenLength)
	if _, err := rand.Read(rb); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(rb), nil
}
