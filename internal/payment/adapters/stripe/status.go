package stripe

import (
	"strings"

	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
)

// MapSubscriptionStatus translates a Stripe subscription status into the
// agreement payment-status vocabulary. Unknown statuses map to empty.
func MapSubscriptionStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "trialing":
		return agreementdomain.StatusTrial
	case "active":
		return agreementdomain.StatusActive
	case "past_due", "unpaid":
		return agreementdomain.StatusPastDue
	case "canceled", "cancelled", "incomplete_expired":
		return agreementdomain.StatusCancelled
	default:
		return ""
	}
}
