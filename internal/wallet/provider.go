// Package wallet is the console's view of an EIP-1193 wallet: a request/response
// channel keyed by method name plus account and chain change notifications.
package wallet

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/rpc"
)

// Provider error codes from EIP-1193 and EIP-3326.
const (
	CodeUserRejected      = 4001
	CodeUnrecognizedChain = 4902
)

// Provider is the injected wallet capability.
type Provider interface {
	// Request sends one JSON-RPC style request and returns the raw result.
	Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
	// OnAccountsChanged registers fn for accountsChanged notifications.
	OnAccountsChanged(fn func(accounts []string)) (unsubscribe func())
	// OnChainChanged registers fn for chainChanged notifications.
	OnChainChanged(fn func(chainID string)) (unsubscribe func())
}

// Error is a structured provider failure. It satisfies go-ethereum's rpc.Error and
// rpc.DataError so errors from a real RPC client and from Error classify the same.
type Error struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *Error) Error() string          { return e.Message }
func (e *Error) ErrorCode() int         { return e.Code }
func (e *Error) ErrorData() interface{} { return e.Data }

var (
	_ rpc.Error     = (*Error)(nil)
	_ rpc.DataError = (*Error)(nil)
)

// ErrorCode returns the numeric code carried by err, if any.
func ErrorCode(err error) (int, bool) {
	var coded rpc.Error
	if errors.As(err, &coded) {
		return coded.ErrorCode(), true
	}
	return 0, false
}

// ErrorData returns the diagnostic payload carried by err. Empty payloads count as
// absent.
func ErrorData(err error) (interface{}, bool) {
	var withData rpc.DataError
	if !errors.As(err, &withData) {
		return nil, false
	}
	data := withData.ErrorData()
	switch v := data.(type) {
	case nil:
		return nil, false
	case string:
		if v == "" {
			return nil, false
		}
	}
	return data, true
}

// IsUserRejected reports whether the wallet user declined the request.
func IsUserRejected(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUserRejected
}
