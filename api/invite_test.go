package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivo-org/concierge/models"
)

func TestInviteRoutesRequireAToken(t *testing.T) {
	f := newTestFixture(t, false)

	tests := []toTest{
		{desc: "send without token", method: "POST", url: "/team/invite", body: testJSONObject{"email": "x@example.org", "role": "editor"}, respCode: http.StatusUnauthorized},
		{desc: "accept without token", method: "POST", url: "/team/invite/some-token/accept", respCode: http.StatusUnauthorized},
		{desc: "cancel without token", method: "DELETE", url: "/team/invite/some-id", respCode: http.StatusUnauthorized},
		{desc: "sent listing without token", method: "GET", url: "/team/invites", respCode: http.StatusUnauthorized},
		{desc: "received listing without token", method: "GET", url: "/team/invitations", respCode: http.StatusUnauthorized},
		{desc: "members without token", method: "GET", url: "/team/members", respCode: http.StatusUnauthorized},
	}

	for _, test := range tests {
		rec := f.perform(t, test.method, test.url, test.token, test.body)
		assert.Equal(t, test.respCode, rec.Code, test.desc)
	}
}

func TestSendInviteRefusals(t *testing.T) {
	f := newTestFixture(t, false)

	tests := []toTest{
		{desc: "invalid email", method: "POST", url: "/team/invite", token: testing_token_owner, body: testJSONObject{"email": "nope", "role": "editor"}, respCode: http.StatusBadRequest},
		{desc: "invalid role", method: "POST", url: "/team/invite", token: testing_token_owner, body: testJSONObject{"email": "x@example.org", "role": "boss"}, respCode: http.StatusBadRequest},
		{desc: "missing body fields", method: "POST", url: "/team/invite", token: testing_token_owner, body: testJSONObject{}, respCode: http.StatusBadRequest},
		{desc: "self invite", method: "POST", url: "/team/invite", token: testing_token_owner, body: testJSONObject{"email": testing_owner_email, "role": "viewer"}, respCode: http.StatusConflict},
	}

	for _, test := range tests {
		rec := f.perform(t, test.method, test.url, test.token, test.body)
		assert.Equal(t, test.respCode, rec.Code, test.desc)
	}
}

func TestSendInvitePlanGate(t *testing.T) {
	f := newTestFixture(t, false)
	f.plans.tier = models.PlanPremium

	rec := f.perform(t, "POST", "/team/invite", testing_token_owner,
		testJSONObject{"email": testing_invitee_email, "role": "editor"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var status Status
	decodeBody(t, rec, &status)
	assert.Equal(t, statusPlanRequiredMessage, status.Reason)
}

func TestInviteLifecycle(t *testing.T) {
	f := newTestFixture(t, false)

	// the owner sends the invite
	rec := f.perform(t, "POST", "/team/invite", testing_token_owner,
		testJSONObject{"email": testing_invitee_email, "role": "editor"})
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.Invite
	decodeBody(t, rec, &created)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Empty(t, created.Token, "the token must never leak into responses")
	assert.Equal(t, 1, f.notifier.SentCount())

	// a duplicate is refused
	rec = f.perform(t, "POST", "/team/invite", testing_token_owner,
		testJSONObject{"email": testing_invitee_email, "role": "viewer"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// the recipient follows the emailed deep link
	stored, err := f.store.FindInviteByID(context.Background(), created.ID)
	require.NoError(t, err)

	rec = f.perform(t, "GET", "/team/invite/"+stored.Token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var viewed models.Invite
	decodeBody(t, rec, &viewed)
	assert.Equal(t, created.ID, viewed.ID)

	// and accepts
	rec = f.perform(t, "POST", fmt.Sprintf("/team/invite/%s/accept", stored.Token), testing_token_invitee, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var membership models.Membership
	decodeBody(t, rec, &membership)
	assert.Equal(t, testing_uid_owner, membership.OwnerID)
	assert.Equal(t, testing_uid_invitee, membership.MemberID)
	assert.Equal(t, models.RoleEditor, membership.Role)

	// accepting again is a conflict, membership count stays at one
	rec = f.perform(t, "POST", fmt.Sprintf("/team/invite/%s/accept", stored.Token), testing_token_invitee, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.perform(t, "GET", "/team/members", testing_token_owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var members []models.Membership
	decodeBody(t, rec, &members)
	assert.Len(t, members, 1)
}

func TestGetInvite(t *testing.T) {
	f := newTestFixture(t, false)

	invite := f.seedPendingInvite(t, nil)

	rec := f.perform(t, "GET", "/team/invite/"+invite.Token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.perform(t, "GET", "/team/invite/no-such-token", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInviteExpired(t *testing.T) {
	f := newTestFixture(t, false)

	invite := f.seedPendingInvite(t, func(i *models.Invite) {
		i.ExpiresAt = time.Now().UTC().Add(-time.Second)
	})

	rec := f.perform(t, "GET", "/team/invite/"+invite.Token, "", nil)
	assert.Equal(t, http.StatusGone, rec.Code)

	rec = f.perform(t, "POST", fmt.Sprintf("/team/invite/%s/accept", invite.Token), testing_token_invitee, nil)
	assert.Equal(t, http.StatusGone, rec.Code)

	rec = f.perform(t, "POST", fmt.Sprintf("/team/invite/%s/decline", invite.Token), "", nil)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestDeclineInvite(t *testing.T) {
	f := newTestFixture(t, false)

	invite := f.seedPendingInvite(t, nil)

	rec := f.perform(t, "POST", fmt.Sprintf("/team/invite/%s/decline", invite.Token), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var declined models.Invite
	decodeBody(t, rec, &declined)
	assert.Equal(t, models.StatusDeclined, declined.Status)

	// declined is terminal
	rec = f.perform(t, "POST", fmt.Sprintf("/team/invite/%s/decline", invite.Token), "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.perform(t, "POST", fmt.Sprintf("/team/invite/%s/accept", invite.Token), testing_token_invitee, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelInvite(t *testing.T) {
	f := newTestFixture(t, false)

	invite := f.seedPendingInvite(t, nil)

	// only the owner may cancel
	rec := f.perform(t, "DELETE", "/team/invite/"+invite.ID, testing_token_stranger, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.perform(t, "POST", fmt.Sprintf("/team/invite/%s/accept", invite.Token), testing_token_invitee, nil)
	require.Equal(t, http.StatusOK, rec.Code, "a refused cancel must leave the invite acceptable")

	second := f.seedPendingInvite(t, func(i *models.Invite) {
		i.InviteeEmail = "other@example.org"
	})

	rec = f.perform(t, "DELETE", "/team/invite/"+second.ID, testing_token_owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cancelled models.Invite
	decodeBody(t, rec, &cancelled)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	rec = f.perform(t, "DELETE", "/team/invite/no-such-id", testing_token_owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.perform(t, "DELETE", "/team/invite/"+second.ID, testing_token_owner, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInviteListings(t *testing.T) {
	f := newTestFixture(t, false)

	f.seedPendingInvite(t, nil)
	f.seedPendingInvite(t, func(i *models.Invite) {
		i.InviteeEmail = "other@example.org"
		i.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	})

	rec := f.perform(t, "GET", "/team/invites", testing_token_owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sent []models.Invite
	decodeBody(t, rec, &sent)
	assert.Len(t, sent, 2, "owners see every invite they sent")

	rec = f.perform(t, "GET", "/team/invitations", testing_token_invitee, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var received []models.Invite
	decodeBody(t, rec, &received)
	assert.Len(t, received, 1, "recipients only see actionable invites")

	rec = f.perform(t, "GET", "/team/invitations", testing_token_stranger, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var none []models.Invite
	decodeBody(t, rec, &none)
	assert.Empty(t, none)
}

func TestProbes(t *testing.T) {
	f := newTestFixture(t, false)

	for _, url := range []string{"/status", "/ready", "/live"} {
		rec := f.perform(t, "GET", url, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, url)

		var status Status
		decodeBody(t, rec, &status)
		assert.Equal(t, STATUS_OK, status.Reason, url)
	}
}

func TestProbesWithBrokenStore(t *testing.T) {
	f := newTestFixture(t, true)

	rec := f.perform(t, "GET", "/status", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = f.perform(t, "GET", "/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "liveness does not depend on the store")
}
