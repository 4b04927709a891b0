package checkout

// State is the explicit checkout screen state. Exactly one state is active
// per session; illegal combinations (e.g. variant prompt while submitting)
// are unrepresentable.
type State string

const (
	StateBrowsing      State = "BROWSING"
	StateVariantPrompt State = "VARIANT_PROMPT"
	StatePaymentEntry  State = "PAYMENT_ENTRY"
	StateSubmitting    State = "SUBMITTING"
	StateSuccess       State = "SUCCESS"
	StateFailed        State = "FAILED"
)

var transitions = map[State][]State{
	StateBrowsing:      {StateVariantPrompt, StatePaymentEntry},
	StateVariantPrompt: {StateBrowsing},
	StatePaymentEntry:  {StateBrowsing, StateSubmitting},
	StateSubmitting:    {StateSuccess, StateFailed},
	StateSuccess:       {StateBrowsing},
	StateFailed:        {StatePaymentEntry},
}

// CanTransitionTo reports whether the state machine allows moving from one
// state to another.
func CanTransitionTo(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}
