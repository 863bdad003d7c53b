package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/festivo-org/concierge/models"
	"github.com/festivo-org/concierge/team"
)

type (
	//Invite details for generating a new invite
	inviteBody struct {
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	}
)

// sendServiceError translates a refusal from the lifecycle service into the
// matching HTTP status. Anything unrecognized is an internal failure.
func (a *Api) sendServiceError(ctx context.Context, res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, team.ErrInvalidEmail):
		a.sendError(ctx, res, http.StatusBadRequest, statusInvalidEmailMessage)
	case errors.Is(err, team.ErrInvalidRole):
		a.sendError(ctx, res, http.StatusBadRequest, statusInvalidRoleMessage)
	case errors.Is(err, team.ErrNotAuthorized):
		a.sendError(ctx, res, http.StatusForbidden, statusForbiddenMessage)
	case errors.Is(err, team.ErrPlanNotEntitled):
		a.sendError(ctx, res, http.StatusForbidden, statusPlanRequiredMessage)
	case errors.Is(err, team.ErrInviteNotFound):
		a.sendError(ctx, res, http.StatusNotFound, statusInviteNotFoundMessage)
	case errors.Is(err, team.ErrInviteExpired):
		a.sendError(ctx, res, http.StatusGone, statusInviteExpiredMessage)
	case errors.Is(err, team.ErrInviteAlreadyResolved):
		a.sendError(ctx, res, http.StatusConflict, statusInviteResolvedMessage)
	case errors.Is(err, team.ErrDuplicateInvite):
		a.sendError(ctx, res, http.StatusConflict, statusExistingInviteMessage)
	case errors.Is(err, team.ErrAlreadyMember):
		a.sendError(ctx, res, http.StatusConflict, statusExistingMemberMessage)
	default:
		a.sendError(ctx, res, http.StatusInternalServerError, STATUS_ERR_SERVICE, err)
	}
}

// SendInvite creates a pending invite and dispatches the invitation email
//
// status: 200 models.Invite
// status: 400 statusInvalidEmailMessage / statusInvalidRoleMessage
// status: 401 STATUS_NO_TOKEN
// status: 403 statusPlanRequiredMessage
// status: 409 statusExistingInviteMessage / statusExistingMemberMessage
func (a *Api) SendInvite(res http.ResponseWriter, req *http.Request, vars map[string]string) {
	td := a.token(res, req)
	if td == nil {
		return
	}
	ctx := req.Context()

	defer req.Body.Close()
	var body inviteBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		a.sendError(ctx, res, http.StatusBadRequest, STATUS_ERR_DECODING, err)
		return
	}

	invite, err := a.svc.CreateInvite(ctx, td, body.Email, body.Role)
	if err != nil {
		a.sendServiceError(ctx, res, err)
		return
	}

	a.sendModelAsResWithStatus(ctx, res, invite, http.StatusOK)
}

// GetInvite returns the invite behind a deep-link token
//
// status: 200 models.Invite
// status: 404 statusInviteNotFoundMessage
// status: 410 statusInviteExpiredMessage
func (a *Api) GetInvite(res http.ResponseWriter, req *http.Request, vars map[string]string) {
	ctx := req.Context()

	invite, err := a.svc.GetInviteByToken(ctx, vars["token"])
	if err != nil {
		a.sendServiceError(ctx, res, err)
		return
	}

	a.sendModelAsResWithStatus(ctx, res, invite, http.StatusOK)
}

// AcceptInvite turns a pending invite into a membership for the caller
//
// status: 200 models.Membership
// status: 401 STATUS_NO_TOKEN
// status: 404 statusInviteNotFoundMessage
// status: 409 statusInviteResolvedMessage / statusExistingMemberMessage
// status: 410 statusInviteExpiredMessage
func (a *Api) AcceptInvite(res http.ResponseWriter, req *http.Request, vars map[string]string) {
	td := a.token(res, req)
	if td == nil {
		return
	}
	ctx := req.Context()

	membership, err := a.svc.AcceptInvite(ctx, td, vars["token"])
	if err != nil {
		a.sendServiceError(ctx, res, err)
		return
	}

	a.sendModelAsResWithStatus(ctx, res, membership, http.StatusOK)
}

// DeclineInvite resolves a pending invite as declined; the token is the only
// credential required
//
// status: 200 models.Invite
// status: 404 statusInviteNotFoundMessage
// status: 409 statusInviteResolvedMessage
// status: 410 statusInviteExpiredMessage
func (a *Api) DeclineInvite(res http.ResponseWriter, req *http.Request, vars map[string]string) {
	ctx := req.Context()

	invite, err := a.svc.DeclineInvite(ctx, vars["token"])
	if err != nil {
		a.sendServiceError(ctx, res, err)
		return
	}

	a.sendModelAsResWithStatus(ctx, res, invite, http.StatusOK)
}

// CancelInvite lets the owner withdraw a pending invite by id
//
// status: 200 models.Invite
// status: 401 STATUS_NO_TOKEN
// status: 403 statusForbiddenMessage
// status: 404 statusInviteNotFoundMessage
// status: 409 statusInviteResolvedMessage
func (a *Api) CancelInvite(res http.ResponseWriter, req *http.Request, vars map[string]string) {
	td := a.token(res, req)
	if td == nil {
		return
	}
	ctx := req.Context()

	invite, err := a.svc.CancelInvite(ctx, td, vars["inviteid"])
	if err != nil {
		a.sendServiceError(ctx, res, err)
		return
	}

	a.sendModelAsResWithStatus(ctx, res, invite, http.StatusOK)
}

// GetSentInvitations lists every invite the caller has sent
//
// status: 200 []models.Invite
// status: 401 STATUS_NO_TOKEN
func (a *Api) GetSentInvitations(res http.ResponseWriter, req *http.Request, vars map[string]string) {
	td := a.token(res, req)
	if td == nil {
		return
	}
	ctx := req.Context()

	invites, err := a.svc.ListSentInvites(ctx, td)
	if err != nil {
		a.sendServiceError(ctx, res, err)
		return
	}
	if invites == nil {
		invites = []*models.Invite{}
	}

	a.sendModelAsResWithStatus(ctx, res, invites, http.StatusOK)
}

// GetReceivedInvitations lists the actionable invites addressed to the
// caller's email
//
// status: 200 []models.Invite
// status: 401 STATUS_NO_TOKEN
func (a *Api) GetReceivedInvitations(res http.ResponseWriter, req *http.Request, vars map[string]string) {
	td := a.token(res, req)
	if td == nil {
		return
	}
	ctx := req.Context()

	invites, err := a.svc.ListReceivedInvites(ctx, td)
	if err != nil {
		a.sendServiceError(ctx, res, err)
		return
	}
	if invites == nil {
		invites = []*models.Invite{}
	}

	a.sendModelAsResWithStatus(ctx, res, invites, http.StatusOK)
}

// GetTeamMembers lists the caller's team
//
// status: 200 []models.Membership
// status: 401 STATUS_NO_TOKEN
func (a *Api) GetTeamMembers(res http.ResponseWriter, req *http.Request, vars map[string]string) {
	td := a.token(res, req)
	if td == nil {
		return
	}
	ctx := req.Context()

	members, err := a.svc.ListMembers(ctx, td)
	if err != nil {
		a.sendServiceError(ctx, res, err)
		return
	}
	if members == nil {
		members = []*models.Membership{}
	}

	a.sendModelAsResWithStatus(ctx, res, members, http.StatusOK)
}
