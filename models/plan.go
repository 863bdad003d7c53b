package models

// PlanTier is the billing tier of an account, as reported by the plans
// service. Team management is reserved for the top tier.
type PlanTier string

const (
	PlanFree      PlanTier = "free"
	PlanPremium   PlanTier = "premium"
	PlanExclusive PlanTier = "exclusive"
)

func (p PlanTier) CanManageTeam() bool {
	return p == PlanExclusive
}
