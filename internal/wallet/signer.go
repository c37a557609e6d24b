package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrNoSigner means the wallet exposes no account to sign with.
	ErrNoSigner = errors.New("No signer available")
	// ErrConfirmTimeout is returned by WaitMined when the deadline passes first.
	ErrConfirmTimeout = errors.New("timed out waiting for transaction confirmation")
)

// CallMsg is a contract call in the wallet's transaction-object shape.
type CallMsg struct {
	To   common.Address
	Data []byte
	// Gas is the explicit limit; nil lets the wallet choose.
	Gas *big.Int
}

type txArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
	Gas  *hexutil.Big   `json:"gas,omitempty"`
}

// Receipt is the subset of a transaction receipt the console needs.
type Receipt struct {
	TxHash      common.Hash    `json:"transactionHash"`
	BlockNumber *hexutil.Big   `json:"blockNumber"`
	Status      hexutil.Uint64 `json:"status"`
	GasUsed     hexutil.Uint64 `json:"gasUsed"`
}

// Succeeded reports a status-1 receipt.
func (r *Receipt) Succeeded() bool {
	return r.Status == 1
}

// Signer sends calls on behalf of the wallet's first account.
type Signer struct {
	provider    Provider
	from        common.Address
	receiptPoll time.Duration
}

// NewSigner asks the wallet for its accounts and binds to the first one.
func NewSigner(ctx context.Context, p Provider, receiptPoll time.Duration) (*Signer, error) {
	if p == nil {
		return nil, ErrNoSigner
	}
	raw, err := p.Request(ctx, "eth_accounts")
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decode eth_accounts: %w", err)
	}
	if len(accounts) == 0 || !common.IsHexAddress(accounts[0]) {
		return nil, ErrNoSigner
	}
	if receiptPoll <= 0 {
		receiptPoll = 2 * time.Second
	}
	return &Signer{
		provider:    p,
		from:        common.HexToAddress(accounts[0]),
		receiptPoll: receiptPoll,
	}, nil
}

// Address returns the signing account.
func (s *Signer) Address() common.Address {
	return s.from
}

func (s *Signer) args(msg CallMsg) txArgs {
	a := txArgs{From: s.from, To: msg.To, Data: msg.Data}
	if msg.Gas != nil {
		a.Gas = (*hexutil.Big)(new(big.Int).Set(msg.Gas))
	}
	return a
}

// EstimateGas returns the wallet's gas estimate for msg.
func (s *Signer) EstimateGas(ctx context.Context, msg CallMsg) (*big.Int, error) {
	raw, err := s.provider.Request(ctx, "eth_estimateGas", s.args(msg))
	if err != nil {
		return nil, err
	}
	var gas hexutil.Big
	if err := json.Unmarshal(raw, &gas); err != nil {
		return nil, fmt.Errorf("decode eth_estimateGas: %w", err)
	}
	return gas.ToInt(), nil
}

// Call executes msg against the latest state without committing anything.
func (s *Signer) Call(ctx context.Context, msg CallMsg) ([]byte, error) {
	raw, err := s.provider.Request(ctx, "eth_call", s.args(msg), "latest")
	if err != nil {
		return nil, err
	}
	var out hexutil.Bytes
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode eth_call: %w", err)
	}
	return out, nil
}

// SendTransaction hands msg to the wallet for signing and broadcast.
func (s *Signer) SendTransaction(ctx context.Context, msg CallMsg) (common.Hash, error) {
	raw, err := s.provider.Request(ctx, "eth_sendTransaction", s.args(msg))
	if err != nil {
		return common.Hash{}, err
	}
	var hash common.Hash
	if err := json.Unmarshal(raw, &hash); err != nil {
		return common.Hash{}, fmt.Errorf("decode eth_sendTransaction: %w", err)
	}
	return hash, nil
}

// GasPrice returns the network's suggested gas price in wei.
func (s *Signer) GasPrice(ctx context.Context) (*big.Int, error) {
	raw, err := s.provider.Request(ctx, "eth_gasPrice")
	if err != nil {
		return nil, err
	}
	var price hexutil.Big
	if err := json.Unmarshal(raw, &price); err != nil {
		return nil, fmt.Errorf("decode eth_gasPrice: %w", err)
	}
	return price.ToInt(), nil
}

// WaitMined polls for the receipt of hash until it is included in a block, ctx is
// cancelled, or timeout elapses (timeout <= 0 waits without a deadline).
func (s *Signer) WaitMined(ctx context.Context, hash common.Hash, timeout time.Duration) (*Receipt, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(s.receiptPoll)
	defer ticker.Stop()

	for {
		receipt, err := s.receipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// 尚未上链或暂时性错误, 继续等待

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, fmt.Errorf("%w: %s", ErrConfirmTimeout, hash.Hex())
		case <-ticker.C:
		}
	}
}

func (s *Signer) receipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	raw, err := s.provider.Request(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}
	var r Receipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	if r.BlockNumber == nil {
		return nil, nil
	}
	return &r, nil
}
