package checkout

type State string

const (
	StateIdle           State = "IDLE"
	StateValidating     State = "VALIDATING"
	StateWalletDebited  State = "WALLET_DEBITED"
	StateOrderSubmitted State = "ORDER_SUBMITTED"
	StateCommitted      State = "COMMITTED"
)

// CanTransitionTo reports whether the linear checkout flow allows moving from
// s to next. Every state may fall back to Idle.
func (s State) CanTransitionTo(next State) bool {
	if next == StateIdle {
		return true
	}
	switch s {
	case StateIdle:
		return next == StateValidating
	case StateValidating:
		return next == StateWalletDebited
	case StateWalletDebited:
		return next == StateOrderSubmitted
	case StateOrderSubmitted:
		return next == StateCommitted
	default:
		return false
	}
}

func (s State) String() string {
	return string(s)
}
