package state

import "github.com/jcmexdev/storefront/internal/storefront/core/topics"

// Phase is the checkout progress derived from the latest validation results.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseDeliveryInvalid
	PhaseDeliveryValid
	PhaseContactsInvalid
	PhaseContactsValid
	PhaseSubmitted
)

var phaseNames = [...]string{
	PhaseEmpty:           "empty",
	PhaseDeliveryInvalid: "delivery-invalid",
	PhaseDeliveryValid:   "delivery-valid",
	PhaseContactsInvalid: "contacts-invalid",
	PhaseContactsValid:   "contacts-valid",
	PhaseSubmitted:       "submitted",
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// next returns the phase after a validation of step. Submitted is terminal
// here; it is only left through BeginCheckout. A successful delivery result
// never moves a contacts phase backwards, a failed one does. Contact results
// only count once the delivery step has passed.
func (p Phase) next(step topics.Step, valid bool) Phase {
	if p == PhaseSubmitted {
		return p
	}
	switch step {
	case topics.StepDelivery:
		if !valid {
			return PhaseDeliveryInvalid
		}
		if p < PhaseDeliveryValid {
			return PhaseDeliveryValid
		}
	case topics.StepContacts:
		if p < PhaseDeliveryValid {
			return p
		}
		if valid {
			return PhaseContactsValid
		}
		return PhaseContactsInvalid
	}
	return p
}
