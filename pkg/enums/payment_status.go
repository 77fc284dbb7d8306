package enums

import "strings"

// PaymentStatus is the local payment lifecycle. Provider statuses outside the
// known set are stored verbatim.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusRefused PaymentStatus = "refused"
)

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsTerminal reports whether no further transitions are accepted.
func (p PaymentStatus) IsTerminal() bool {
	return p == PaymentStatusPaid || p == PaymentStatusRefused
}

// NormalizePaymentStatus maps a provider status onto the local vocabulary.
func NormalizePaymentStatus(raw string) PaymentStatus {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case "paid", "approved":
		return PaymentStatusPaid
	case "pending":
		return PaymentStatusPending
	case "refused", "canceled":
		return PaymentStatusRefused
	default:
		return PaymentStatus(status)
	}
}

// StatusTransition is the outcome of applying an incoming status to a stored one.
type StatusTransition int

const (
	// TransitionIgnore leaves the row untouched.
	TransitionIgnore StatusTransition = iota
	// TransitionApply writes the new status.
	TransitionApply
	// TransitionRefresh keeps a paid row paid and bumps paid_at.
	TransitionRefresh
)

// NextPaymentStatus applies the forward-only lattice: pending may move
// anywhere, paid and refused are terminal and nothing moves back to pending.
func NextPaymentStatus(current, incoming PaymentStatus) StatusTransition {
	if incoming == "" {
		return TransitionIgnore
	}
	if current == incoming {
		if current == PaymentStatusPaid {
			return TransitionRefresh
		}
		return TransitionIgnore
	}
	if current.IsTerminal() || incoming == PaymentStatusPending {
		return TransitionIgnore
	}
	return TransitionApply
}
