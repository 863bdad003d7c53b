package team

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/festivo-org/concierge/clients"
	"github.com/festivo-org/concierge/models"
)

type (
	// PlanLookup reports the billing tier of an account.
	PlanLookup interface {
		GetPlan(ctx context.Context, userID string) (models.PlanTier, error)
	}

	Config struct {
		WebUrl   string `split_words:"true" required:"true"`
		AssetUrl string `split_words:"true" required:"true"`
	}

	// Service drives the invite lifecycle. Every operation commits the core
	// transition first; email and audit dispatch happen afterwards, are best
	// effort, and never roll back committed state.
	Service struct {
		store     clients.StoreClient
		notifier  clients.Notifier
		audit     clients.AuditRecorder
		plans     PlanLookup
		templates models.Templates
		logger    *zap.SugaredLogger
		config    Config
	}
)

func NewService(
	config Config,
	store clients.StoreClient,
	notifier clients.Notifier,
	audit clients.AuditRecorder,
	plans PlanLookup,
	templates models.Templates,
	logger *zap.SugaredLogger,
) *Service {
	return &Service{
		store:     store,
		notifier:  notifier,
		audit:     audit,
		plans:     plans,
		templates: templates,
		logger:    logger,
		config:    config,
	}
}

func ConfigProvider() (Config, error) {
	var config Config
	if err := envconfig.Process("concierge", &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CreateInvite validates the request, gates it on the owner's plan, and
// inserts a fresh pending invite. The store's unique indexes are the final
// arbiters of the duplicate rules; the lookups here just catch the common
// cases before paying for an insert.
func (s *Service) CreateInvite(ctx context.Context, owner *models.TokenData, inviteeEmail string, role models.Role) (*models.Invite, error) {
	email := models.NormalizeEmail(inviteeEmail)
	if !models.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	// The plan gate comes first among the business rules: an owner without
	// the tier is refused the same way no matter what they submitted.
	tier, err := s.plans.GetPlan(ctx, owner.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "looking up the owner's plan")
	}
	if !tier.CanManageTeam() {
		return nil, ErrPlanNotEntitled
	}

	if email == models.NormalizeEmail(owner.Email) {
		// owners are trivially on their own team
		return nil, ErrAlreadyMember
	}

	if membership, err := s.store.FindMembershipByEmail(ctx, owner.UserID, email); err != nil {
		return nil, errors.Wrap(err, "checking for an existing membership")
	} else if membership != nil {
		return nil, ErrAlreadyMember
	}

	if existing, err := s.store.FindPendingInvite(ctx, owner.UserID, email); err != nil {
		return nil, errors.Wrap(err, "checking for an existing invite")
	} else if existing != nil {
		if !existing.IsExpired() {
			return nil, ErrDuplicateInvite
		}
		// A dead pending invite still occupies the unique (owner, email)
		// slot, so settle it before inserting the replacement. Losing the
		// race here is fine, the insert below re-checks.
		if _, err := s.store.TransitionInvite(ctx, existing.ID, models.StatusExpired); err != nil && err != clients.ErrNotPending {
			return nil, errors.Wrap(err, "expiring the previous invite")
		}
	}

	invite, err := models.NewInvite(owner.UserID, owner.Email, email, role)
	if err != nil {
		return nil, errors.Wrap(err, "generating the invite")
	}

	if err := s.insertWithRetry(ctx, invite); err != nil {
		return nil, err
	}

	s.sendInviteEmail(ctx, invite)
	s.recordAudit(ctx, owner.UserID, owner.Email, models.AuditInviteSent, invite)

	return invite, nil
}

// insertWithRetry retries exactly once with a fresh token when the insert
// loses to the token unique index.
func (s *Service) insertWithRetry(ctx context.Context, invite *models.Invite) error {
	err := s.store.InsertInvite(ctx, invite)
	if err == clients.ErrDuplicateToken {
		s.logger.With("inviteId", invite.ID).Warn("token collision on insert, retrying with a fresh token")
		if err := invite.ResetToken(); err != nil {
			return errors.Wrap(err, "regenerating the invite token")
		}
		err = s.store.InsertInvite(ctx, invite)
	}
	switch err {
	case nil:
		return nil
	case clients.ErrDuplicatePendingInvite:
		return ErrDuplicateInvite
	default:
		return errors.Wrap(err, "inserting the invite")
	}
}

// GetInviteByToken resolves the deep link a recipient followed. Resolved
// invites are still returned so the recipient sees their final status;
// expired pending ones are refused.
func (s *Service) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	invite, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.Status == models.StatusPending && invite.IsExpired() {
		return nil, ErrInviteExpired
	}
	return invite, nil
}

// AcceptInvite turns a pending invite into a membership. The invite flip and
// the membership insert commit atomically; the loser of a concurrent resolve
// observes ErrInviteAlreadyResolved.
func (s *Service) AcceptInvite(ctx context.Context, actor *models.TokenData, token string) (*models.Membership, error) {
	invite, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.Status.Terminal() {
		return nil, ErrInviteAlreadyResolved
	}
	if invite.IsExpired() {
		return nil, ErrInviteExpired
	}

	membership := models.NewMembership(invite, actor.UserID)
	switch err := s.store.AcceptInvite(ctx, invite, membership); err {
	case nil:
	case clients.ErrNotPending:
		return nil, ErrInviteAlreadyResolved
	case clients.ErrDuplicateMembership:
		return nil, ErrAlreadyMember
	default:
		return nil, errors.Wrap(err, "accepting the invite")
	}

	s.sendWelcomeEmail(ctx, invite)
	s.recordAudit(ctx, actor.UserID, actor.Email, models.AuditInviteAccepted, invite)

	return membership, nil
}

// DeclineInvite resolves a pending invite as declined. Possession of the
// token is the only credential required.
func (s *Service) DeclineInvite(ctx context.Context, token string) (*models.Invite, error) {
	invite, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.Status.Terminal() {
		return nil, ErrInviteAlreadyResolved
	}
	if invite.IsExpired() {
		return nil, ErrInviteExpired
	}

	updated, err := s.store.TransitionInvite(ctx, invite.ID, models.StatusDeclined)
	if err == clients.ErrNotPending {
		return nil, ErrInviteAlreadyResolved
	}
	if err != nil {
		return nil, errors.Wrap(err, "declining the invite")
	}

	s.recordAudit(ctx, "", invite.InviteeEmail, models.AuditInviteDeclined, updated)

	return updated, nil
}

// CancelInvite withdraws a pending invite. Only the owner may cancel, and
// an expired-but-unresolved invite can still be withdrawn.
func (s *Service) CancelInvite(ctx context.Context, owner *models.TokenData, inviteID string) (*models.Invite, error) {
	invite, err := s.store.FindInviteByID(ctx, inviteID)
	if err != nil {
		return nil, errors.Wrap(err, "finding the invite")
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}
	if invite.OwnerID != owner.UserID {
		return nil, ErrNotAuthorized
	}
	if invite.Status.Terminal() {
		return nil, ErrInviteAlreadyResolved
	}

	updated, err := s.store.TransitionInvite(ctx, invite.ID, models.StatusCancelled)
	if err == clients.ErrNotPending {
		return nil, ErrInviteAlreadyResolved
	}
	if err != nil {
		return nil, errors.Wrap(err, "cancelling the invite")
	}

	s.recordAudit(ctx, owner.UserID, owner.Email, models.AuditInviteCancelled, updated)

	return updated, nil
}

// ListSentInvites returns every invite the owner has sent. Pending invites
// past their expiry are reported as expired without touching the stored
// record.
func (s *Service) ListSentInvites(ctx context.Context, owner *models.TokenData) ([]*models.Invite, error) {
	invites, err := s.store.FindInvitesByOwner(ctx, owner.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "listing sent invites")
	}
	for _, invite := range invites {
		if invite.Status == models.StatusPending && invite.IsExpired() {
			invite.Status = models.StatusExpired
		}
	}
	return invites, nil
}

// ListReceivedInvites returns the actionable invites addressed to the
// actor's email.
func (s *Service) ListReceivedInvites(ctx context.Context, actor *models.TokenData) ([]*models.Invite, error) {
	email := models.NormalizeEmail(actor.Email)
	invites, err := s.store.FindInvitesByEmail(ctx, email, []models.Status{models.StatusPending})
	if err != nil {
		return nil, errors.Wrap(err, "listing received invites")
	}

	actionable := make([]*models.Invite, 0, len(invites))
	for _, invite := range invites {
		if invite.IsExpired() {
			continue
		}
		actionable = append(actionable, invite)
	}
	return actionable, nil
}

func (s *Service) ListMembers(ctx context.Context, owner *models.TokenData) ([]*models.Membership, error) {
	memberships, err := s.store.FindMembershipsByOwner(ctx, owner.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "listing members")
	}
	return memberships, nil
}

func (s *Service) findByToken(ctx context.Context, token string) (*models.Invite, error) {
	if token == "" {
		return nil, ErrInviteNotFound
	}
	invite, err := s.store.FindInviteByToken(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "finding the invite")
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}
	return invite, nil
}

func (s *Service) sendInviteEmail(ctx context.Context, invite *models.Invite) {
	content := map[string]interface{}{
		"OwnerEmail": invite.OwnerEmail,
		"Role":       string(invite.Role),
		"WebURL":     s.config.WebUrl,
		"AssetURL":   s.config.AssetUrl,
		"InviteURL":  fmt.Sprintf("%s/team/invite/%s", s.config.WebUrl, invite.Token),
		"ExpiresAt":  invite.ExpiresAt.Format("Mon, 02 Jan 2006"),
	}
	s.sendEmail(ctx, models.TemplateNameTeamInvite, invite.InviteeEmail, content)
}

func (s *Service) sendWelcomeEmail(ctx context.Context, invite *models.Invite) {
	content := map[string]interface{}{
		"OwnerEmail": invite.OwnerEmail,
		"Role":       string(invite.Role),
		"WebURL":     s.config.WebUrl,
		"AssetURL":   s.config.AssetUrl,
	}
	s.sendEmail(ctx, models.TemplateNameTeamWelcome, invite.InviteeEmail, content)
}

// sendEmail is strictly best effort; a failure is logged and swallowed so it
// can never undo a committed transition.
func (s *Service) sendEmail(ctx context.Context, name models.TemplateName, address string, content map[string]interface{}) {
	template, ok := s.templates[name]
	if !ok {
		s.logger.With("template", string(name)).Error("unknown template type")
		return
	}

	subject, body, err := template.Execute(content)
	if err != nil {
		s.logger.With(zap.Error(err)).Error("executing email template")
		return
	}

	if status, details := s.notifier.Send([]string{address}, subject, body); status != 200 {
		s.logger.Errorw(
			"error sending email",
			"email", address,
			"subject", subject,
			"status", status,
			"message", details,
		)
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID, actorEmail string, action models.AuditAction, invite *models.Invite) {
	details := map[string]interface{}{
		"ownerId":      invite.OwnerID,
		"inviteeEmail": invite.InviteeEmail,
		"role":         invite.Role,
	}
	s.audit.Record(ctx, models.NewAuditRecord(actorID, actorEmail, action, models.AuditTargetInvite, invite.ID, details))
}
