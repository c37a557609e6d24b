package controller

// Gate is the derived enablement of the console's actions.
type Gate struct {
	// Open allows estimate, simulate and send.
	Open bool
	// SwitchNetwork offers switching the wallet to the target chain.
	SwitchNetwork bool
}

// EvaluateGate is a pure function of the session, the target chain id and the
// current state. Chain ids are compared as exact strings.
func EvaluateGate(s Session, targetChainID string, state State) Gate {
	onTarget := s.ChainID == targetChainID
	return Gate{
		Open:          s.Connected() && onTarget && state != StatePending,
		SwitchNetwork: s.Connected() && !onTarget,
	}
}
