package controller

import (
	"encoding/json"
	"fmt"

	"operator-console/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FailureKind is the error taxonomy reported to the user.
type FailureKind string

const (
	FailureUnavailable FailureKind = "unavailable"
	FailureCancelled   FailureKind = "cancelled"
	FailureRevert      FailureKind = "revert"
	FailureGeneric     FailureKind = "error"
)

type failureText struct {
	cancelled string
	revert    string
	fallback  string
}

var failureTexts = map[Operation]failureText{
	OpEstimate: {"User rejected transaction", "Revert: %s", "Gas estimation failed"},
	OpSimulate: {"User rejected simulation", "Simulation revert: %s", "Simulation failed"},
	OpSend:     {"User rejected transaction", "Transaction revert: %s", "Transaction failed"},
}

// Classify maps a failed operation to its kind and status message. The rejection
// code is checked before the revert payload because wallets attach diagnostic
// data to rejections too.
func Classify(op Operation, err error) (FailureKind, string) {
	text := failureTexts[op]

	if wallet.IsUserRejected(err) {
		return FailureCancelled, text.cancelled
	}
	if data, ok := wallet.ErrorData(err); ok {
		return FailureRevert, fmt.Sprintf(text.revert, formatPayload(data))
	}
	if msg := err.Error(); msg != "" {
		return FailureGeneric, msg
	}
	return FailureGeneric, text.fallback
}

// formatPayload renders revert data, appending the decoded Error(string) reason
// when there is one.
func formatPayload(data interface{}) string {
	s, ok := data.(string)
	if !ok {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Sprint(data)
		}
		return string(raw)
	}
	if b, err := hexutil.Decode(s); err == nil {
		if reason, err := abi.UnpackRevert(b); err == nil && reason != "" {
			return fmt.Sprintf("%s (%s)", s, reason)
		}
	}
	return s
}
