package user

// SubscriptionType is the billing plan attached to a listed user.
type SubscriptionType int

const (
	SubscriptionTrial   SubscriptionType = 0
	SubscriptionMonthly SubscriptionType = 1
	SubscriptionAnnual  SubscriptionType = 2
)

// Label returns the display name for the subscription type.
func (t SubscriptionType) Label() string {
	switch t {
	case SubscriptionMonthly:
		return "Monthly"
	case SubscriptionAnnual:
		return "Annual"
	case SubscriptionTrial:
		return "Trial"
	default:
		return "Unknown"
	}
}

// SubscriptionStatus is the lifecycle state of a user's subscription.
type SubscriptionStatus int

const (
	SubscriptionInactive SubscriptionStatus = iota
	SubscriptionActive
	SubscriptionExpired
	SubscriptionNonRenewing
)

// Label returns the display name for the subscription status.
func (s SubscriptionStatus) Label() string {
	switch s {
	case SubscriptionActive:
		return "Active"
	case SubscriptionExpired:
		return "Expired"
	case SubscriptionNonRenewing:
		return "Non-Renewing"
	case SubscriptionInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}
