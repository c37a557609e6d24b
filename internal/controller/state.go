package controller

import (
	"operator-console/internal/contract"
)

// State is the operation state driving which actions are offered.
type State string

const (
	StateIdle       State = "idle"
	StateEstimating State = "estimating"
	StateSimulated  State = "simulated"
	StatePending    State = "pending"
	StateConfirmed  State = "confirmed"
	StateError      State = "error"
)

// Operation names the three gated actions.
type Operation string

const (
	OpEstimate Operation = "estimate"
	OpSimulate Operation = "simulate"
	OpSend     Operation = "send"
)

// Session is the connected wallet account and the chain it is on. Empty strings
// mean absent.
type Session struct {
	Address string `json:"address,omitempty"`
	ChainID string `json:"chain_id,omitempty"`
}

// Connected reports whether an account is recorded.
func (s Session) Connected() bool {
	return s.Address != ""
}

const defaultMessage = "Ready to interact with contract."

// Snapshot is a consistent copy of everything the console renders.
type Snapshot struct {
	Session

	State   State  `json:"state"`
	Message string `json:"message"`
	Notice  string `json:"notice,omitempty"`

	CanInteract       bool `json:"can_interact"`
	ShowSwitchNetwork bool `json:"show_switch_network"`
	WalletDetected    bool `json:"wallet_detected"`

	TxHash           string  `json:"tx_hash,omitempty"`
	TxURL            string  `json:"tx_url,omitempty"`
	BlockNumber      *uint64 `json:"block_number,omitempty"`
	ReceiptSucceeded *bool   `json:"receipt_succeeded,omitempty"`

	EstimatedGas string `json:"estimated_gas,omitempty"`
	EstimatedFee string `json:"estimated_fee,omitempty"`

	Target   TargetView   `json:"target"`
	Contract ContractView `json:"contract"`
}

// TargetView is the chain the call must run on.
type TargetView struct {
	ChainID string `json:"chain_id"`
	Name    string `json:"name"`
}

// ContractView is the read-only call descriptor.
type ContractView struct {
	Address   string              `json:"address"`
	URL       string              `json:"url"`
	Signature string              `json:"signature"`
	Args      []contract.Argument `json:"args"`
}
