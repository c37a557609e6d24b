// Package controller is the interaction state machine behind the console: it
// connects the wallet, switches it to the target chain, and estimates, simulates and
// sends the configured contract call one operation at a time.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"operator-console/internal/clipboard"
	"operator-console/internal/contract"
	"operator-console/internal/journal"
	"operator-console/internal/notice"
	"operator-console/internal/wallet"
	"operator-console/pkg/logger"
	"operator-console/pkg/monitor"
	"operator-console/pkg/store"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Status and notice texts.
const (
	MsgWalletNotDetected  = "Wallet not detected. Please install an EIP-1193 compatible wallet."
	MsgWalletConnected    = "Wallet connected."
	MsgConnectFailed      = "Failed to connect wallet"
	MsgSwitchRejected     = "User rejected network switch"
	MsgSwitchFailed       = "Failed to switch network"
	MsgEstimating         = "Estimating gas..."
	MsgSimulating         = "Simulating call..."
	MsgSimulationOK       = "Simulation successful. Transaction would succeed."
	MsgSending            = "Sending transaction..."
	NoticeSwitched        = "Network switched successfully"
	NoticeEstimated       = "Gas estimated successfully"
	NoticeSimulated       = "Simulation successful"
	NoticeConfirmed       = "Transaction confirmed!"
	NoticeCopied          = "Transaction hash copied!"
	gasBufferNumerator    = 110
	gasBufferDenominator  = 100
	defaultReceiptPoll    = 2 * time.Second
	defaultConfirmTimeout = 10 * time.Minute
)

var (
	// ErrGateClosed rejects estimate/simulate/send while no wallet is connected, the
	// wallet is on another chain, or a transaction is pending.
	ErrGateClosed = errors.New("interaction gate closed")
	// ErrBusy rejects a request while another operation is still running.
	ErrBusy = errors.New("another operation is in progress")
	// ErrWalletUnavailable means no wallet capability was detected.
	ErrWalletUnavailable = errors.New("wallet not detected")
	// ErrNoTransaction means there is no recorded transaction hash to copy.
	ErrNoTransaction = errors.New("no transaction recorded")
)

// OperationError carries the classified failure of an operation.
type OperationError struct {
	Op      Operation
	Kind    FailureKind
	Message string
	Err     error
}

func (e *OperationError) Error() string { return e.Message }
func (e *OperationError) Unwrap() error { return e.Err }

// Recorder receives transaction lifecycle events. *journal.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, ev journal.Event) error
}

// Options wires the controller's collaborators.
type Options struct {
	// Provider is the wallet capability; nil means no wallet was detected.
	Provider  wallet.Provider
	Store     store.Store
	StoreKey  string
	Clipboard clipboard.Writer
	Notices   *notice.Board
	Journal   Recorder

	Target contract.Chain
	Call   contract.CallDescriptor

	// RequestTimeout bounds each wallet request (0 = none).
	RequestTimeout time.Duration
	// ConfirmTimeout bounds the wait for block inclusion.
	ConfirmTimeout time.Duration
	ReceiptPoll    time.Duration

	// OnTransition is called after every state change, outside the lock.
	OnTransition func(from, to State)
	Logger       *zap.Logger
}

// Controller owns the session, the operation state and the last transaction.
type Controller struct {
	opts Options
	log  *zap.Logger

	// lifetime of background work; cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	session      Session
	state        State
	message      string
	inFlight     bool
	txHash       string
	blockNumber  *uint64
	receiptOK    *bool
	estimatedGas *big.Int
	estimatedFee string
	unsubscribe  []func()
}

// New builds a controller and restores the last transaction hash from the store.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("controller: store is required")
	}
	if opts.StoreKey == "" {
		opts.StoreKey = "lastTxHash"
	}
	if opts.Notices == nil {
		opts.Notices = notice.NewBoard()
	}
	if opts.Target.ID == nil {
		opts.Target = contract.Target
	}
	if opts.Call.Method == "" {
		opts.Call = contract.Call
	}
	if opts.ReceiptPoll <= 0 {
		opts.ReceiptPoll = defaultReceiptPoll
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = defaultConfirmTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("controller")
	}

	c := &Controller{
		opts:  opts,
		log:   log,
		state: StateIdle,
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	last, err := opts.Store.Get(ctx, opts.StoreKey)
	switch {
	case err == nil:
		c.txHash = last
		log.Info("restored last transaction", zap.String("tx_hash", last))
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Warn("failed to read last transaction", zap.Error(err))
	}

	return c, nil
}

// Close drops the wallet subscriptions, cancels in-flight work and waits for it.
func (c *Controller) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	for _, fn := range unsub {
		fn()
	}
	c.cancel()
	c.wg.Wait()
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.opts.Target.IDHex()
	gate := EvaluateGate(c.session, target, c.state)

	snap := Snapshot{
		Session:           c.session,
		State:             c.state,
		Message:           c.message,
		Notice:            c.opts.Notices.Current(),
		CanInteract:       gate.Open,
		ShowSwitchNetwork: gate.SwitchNetwork,
		WalletDetected:    c.opts.Provider != nil,
		TxHash:            c.txHash,
		TxURL:             c.opts.Target.TxURL(c.txHash),
		EstimatedFee:      c.estimatedFee,
		Target:            TargetView{ChainID: target, Name: c.opts.Target.Name},
		Contract: ContractView{
			Address:   c.opts.Call.To.Hex(),
			URL:       c.opts.Target.AddressURL(c.opts.Call.To),
			Signature: c.opts.Call.Signature(),
			Args:      c.opts.Call.Display(),
		},
	}
	if snap.Message == "" {
		snap.Message = defaultMessage
	}
	if c.blockNumber != nil {
		n := *c.blockNumber
		snap.BlockNumber = &n
	}
	if c.receiptOK != nil {
		ok := *c.receiptOK
		snap.ReceiptSucceeded = &ok
	}
	if c.estimatedGas != nil {
		snap.EstimatedGas = c.estimatedGas.String()
	}
	return snap
}

// State returns the current operation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Gate evaluates the interaction gate for the current session.
func (c *Controller) Gate() Gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return EvaluateGate(c.session, c.opts.Target.IDHex(), c.state)
}

// EstimatedGas returns a copy of the cached estimate, or nil.
func (c *Controller) EstimatedGas() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.estimatedGas == nil {
		return nil
	}
	return new(big.Int).Set(c.estimatedGas)
}

// setLocked changes state and message; the caller holds mu and must call the
// returned func after unlocking.
func (c *Controller) setLocked(state State, msg string) func() {
	from := c.state
	c.state = state
	c.message = msg
	hook := c.opts.OnTransition
	return func() {
		if from != state {
			c.log.Debug("state transition", zap.String("from", string(from)), zap.String("to", string(state)))
		}
		if hook != nil {
			hook(from, state)
		}
	}
}

func (c *Controller) set(state State, msg string) {
	c.mu.Lock()
	notify := c.setLocked(state, msg)
	c.mu.Unlock()
	notify()
}

func (c *Controller) requestCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.opts.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// ConnectWallet requests account access and records the first account and the
// wallet's chain id.
func (c *Controller) ConnectWallet(ctx context.Context) error {
	if c.opts.Provider == nil {
		c.set(StateError, MsgWalletNotDetected)
		monitor.ObserveOperation("connect", string(FailureUnavailable))
		return ErrWalletUnavailable
	}
	if err := c.claim(); err != nil {
		return err
	}
	defer c.release()

	rctx, cancel := c.requestCtx(ctx)
	defer cancel()

	address, chainID, err := c.requestAccess(rctx)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgConnectFailed
		}
		c.set(StateError, msg)
		c.log.Warn("wallet connect failed", zap.Error(err))
		monitor.ObserveOperation("connect", string(FailureGeneric))
		return err
	}

	c.mu.Lock()
	next := Session{Address: address, ChainID: chainID}
	if next != c.session {
		c.estimatedGas = nil
		c.estimatedFee = ""
	}
	c.session = next
	notify := c.setLocked(StateIdle, MsgWalletConnected)
	c.mu.Unlock()
	notify()

	c.log.Info("wallet connected", zap.String("address", address), zap.String("chain_id", chainID))
	monitor.ObserveOperation("connect", "success")
	monitor.SetWalletConnected(true)
	return nil
}

func (c *Controller) requestAccess(ctx context.Context) (string, string, error) {
	raw, err := c.opts.Provider.Request(ctx, "eth_requestAccounts")
	if err != nil {
		return "", "", err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return "", "", fmt.Errorf("decode eth_requestAccounts: %w", err)
	}
	if len(accounts) == 0 {
		return "", "", errors.New("wallet returned no accounts")
	}

	raw, err = c.opts.Provider.Request(ctx, "eth_chainId")
	if err != nil {
		return "", "", err
	}
	var id hexutil.Big
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", "", fmt.Errorf("decode eth_chainId: %w", err)
	}
	return accounts[0], contract.HexChainID(id.ToInt()), nil
}

// SwitchToTargetChain asks the wallet to switch to the target chain, adding the
// chain first when the wallet does not know it.
func (c *Controller) SwitchToTargetChain(ctx context.Context) error {
	if c.opts.Provider == nil {
		c.set(StateError, MsgWalletNotDetected)
		return ErrWalletUnavailable
	}
	if err := c.claim(); err != nil {
		return err
	}
	defer c.release()

	rctx, cancel := c.requestCtx(ctx)
	defer cancel()

	target := c.opts.Target
	_, err := c.opts.Provider.Request(rctx, "wallet_switchEthereumChain",
		contract.SwitchChainParams{ChainID: target.IDHex()})
	if code, ok := wallet.ErrorCode(err); ok && code == wallet.CodeUnrecognizedChain {
		c.log.Info("target chain unknown to wallet, adding it", zap.String("chain_id", target.IDHex()))
		_, err = c.opts.Provider.Request(rctx, "wallet_addEthereumChain", target.AddParams())
	}
	if err != nil {
		msg := err.Error()
		if wallet.IsUserRejected(err) {
			msg = MsgSwitchRejected
		} else if msg == "" {
			msg = MsgSwitchFailed
		}
		c.set(StateError, msg)
		c.log.Warn("network switch failed", zap.Error(err))
		monitor.ObserveOperation("switch", "error")
		return &OperationError{Kind: FailureGeneric, Message: msg, Err: err}
	}

	c.opts.Notices.Show(NoticeSwitched)
	monitor.ObserveOperation("switch", "success")
	return nil
}

// CopyLastTransactionHash writes the recorded hash to the configured clipboard.
func (c *Controller) CopyLastTransactionHash() error {
	return c.CopyLastTransactionHashTo(c.opts.Clipboard)
}

// CopyLastTransactionHashTo writes the recorded hash to w.
func (c *Controller) CopyLastTransactionHashTo(w clipboard.Writer) error {
	c.mu.Lock()
	hash := c.txHash
	c.mu.Unlock()

	if hash == "" {
		return ErrNoTransaction
	}
	if w == nil {
		return clipboard.ErrUnsupported
	}
	if err := w.WriteAll(hash); err != nil {
		return err
	}
	c.opts.Notices.Show(NoticeCopied)
	return nil
}

// claim marks the controller busy for connect and switch, which run on the
// caller's goroutine instead of through Start.
func (c *Controller) claim() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrBusy
	}
	c.inFlight = true
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// EstimateGas runs the gas estimate and waits for it.
func (c *Controller) EstimateGas(ctx context.Context) error {
	return c.run(ctx, OpEstimate)
}

// Simulate dry-runs the call and waits for it.
func (c *Controller) Simulate(ctx context.Context) error {
	return c.run(ctx, OpSimulate)
}

// SendTransaction submits the call and waits for its confirmation.
func (c *Controller) SendTransaction(ctx context.Context) error {
	return c.run(ctx, OpSend)
}

func (c *Controller) run(ctx context.Context, op Operation) error {
	done, err := c.Start(ctx, op)
	if err != nil {
		return err
	}
	return <-done
}

// Start admits op through the gate, enters its transient state and runs it in the
// background. The channel yields the outcome once and is closed. Work stops when
// ctx is cancelled or the controller is closed.
func (c *Controller) Start(ctx context.Context, op Operation) (<-chan error, error) {
	var (
		state State
		msg   string
		exec  func(context.Context) error
	)
	switch op {
	case OpEstimate:
		state, msg, exec = StateEstimating, MsgEstimating, c.estimate
	case OpSimulate:
		state, msg, exec = StateEstimating, MsgSimulating, c.simulate
	case OpSend:
		state, msg, exec = StatePending, MsgSending, c.send
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}

	c.mu.Lock()
	if !EvaluateGate(c.session, c.opts.Target.IDHex(), c.state).Open {
		c.mu.Unlock()
		return nil, ErrGateClosed
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.inFlight = true
	notify := c.setLocked(state, msg)
	c.mu.Unlock()
	notify()

	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)

	done := make(chan error, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		defer stop()

		err := exec(opCtx)

		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()

		done <- err
		close(done)
	}()
	return done, nil
}

// fail classifies err, moves to the error state and returns the classified error.
func (c *Controller) fail(op Operation, err error) error {
	kind, msg := Classify(op, err)
	c.set(StateError, msg)
	c.log.Warn("operation failed",
		zap.String("operation", string(op)),
		zap.String("kind", string(kind)),
		zap.Error(err))
	monitor.ObserveOperation(string(op), string(kind))
	return &OperationError{Op: op, Kind: kind, Message: msg, Err: err}
}

func (c *Controller) signer(ctx context.Context) (*wallet.Signer, error) {
	return wallet.NewSigner(ctx, c.opts.Provider, c.opts.ReceiptPoll)
}

func (c *Controller) callMsg() (wallet.CallMsg, error) {
	data, err := c.opts.Call.Data()
	if err != nil {
		return wallet.CallMsg{}, err
	}
	return wallet.CallMsg{To: c.opts.Call.To, Data: data}, nil
}

func (c *Controller) estimate(ctx context.Context) error {
	rctx, cancel := c.requestCtx(ctx)
	defer cancel()

	signer, err := c.signer(rctx)
	if err != nil {
		return c.fail(OpEstimate, err)
	}
	msg, err := c.callMsg()
	if err != nil {
		return c.fail(OpEstimate, err)
	}
	gas, err := signer.EstimateGas(rctx, msg)
	if err != nil {
		return c.fail(OpEstimate, err)
	}

	fee := c.feePreview(rctx, signer, gas)

	c.mu.Lock()
	c.estimatedGas = new(big.Int).Set(gas)
	c.estimatedFee = fee
	notify := c.setLocked(StateIdle, fmt.Sprintf("Estimated gas: %s units", gas.String()))
	c.mu.Unlock()
	notify()

	c.opts.Notices.Show(NoticeEstimated)
	gasFloat, _ := new(big.Float).SetInt(gas).Float64()
	monitor.SetGasEstimate(gasFloat)
	monitor.ObserveOperation(string(OpEstimate), "success")
	return nil
}

// feePreview prices gas at the current gas price in the native currency. Failures
// only drop the preview.
func (c *Controller) feePreview(ctx context.Context, signer *wallet.Signer, gas *big.Int) string {
	price, err := signer.GasPrice(ctx)
	if err != nil {
		c.log.Debug("gas price unavailable, skipping fee preview", zap.Error(err))
		return ""
	}
	wei := new(big.Int).Mul(gas, price)
	cur := c.opts.Target.NativeCurrency
	amount := decimal.NewFromBigInt(wei, -int32(cur.Decimals))
	return amount.String() + " " + cur.Symbol
}

func (c *Controller) simulate(ctx context.Context) error {
	rctx, cancel := c.requestCtx(ctx)
	defer cancel()

	signer, err := c.signer(rctx)
	if err != nil {
		return c.fail(OpSimulate, err)
	}
	msg, err := c.callMsg()
	if err != nil {
		return c.fail(OpSimulate, err)
	}
	if _, err := signer.Call(rctx, msg); err != nil {
		return c.fail(OpSimulate, err)
	}

	c.set(StateSimulated, MsgSimulationOK)
	c.opts.Notices.Show(NoticeSimulated)
	monitor.ObserveOperation(string(OpSimulate), "success")
	return nil
}

// BufferedGasLimit pads an estimate by 10% using integer arithmetic.
func BufferedGasLimit(estimate *big.Int) *big.Int {
	limit := new(big.Int).Mul(estimate, big.NewInt(gasBufferNumerator))
	return limit.Quo(limit, big.NewInt(gasBufferDenominator))
}

func (c *Controller) send(ctx context.Context) error {
	hash, signer, err := c.submit(ctx)
	if err != nil {
		c.record(journal.Event{Type: journal.TypeFailed, Method: c.opts.Call.Signature(), Message: err.Error()})
		return c.fail(OpSend, err)
	}

	// 确认等待: 显式超时 + 生命周期取消
	started := time.Now()
	receipt, err := signer.WaitMined(ctx, hash, c.opts.ConfirmTimeout)
	if err != nil {
		c.record(journal.Event{Type: journal.TypeFailed, TxHash: hash.Hex(), Message: err.Error()})
		return c.fail(OpSend, err)
	}
	monitor.ObserveConfirmation(time.Since(started))

	block := receipt.BlockNumber.ToInt().Uint64()
	ok := receipt.Succeeded()
	if !ok {
		c.log.Warn("transaction included with failed status", zap.String("tx_hash", hash.Hex()), zap.Uint64("block", block))
	}

	c.mu.Lock()
	c.blockNumber = &block
	c.receiptOK = &ok
	notify := c.setLocked(StateConfirmed, fmt.Sprintf("Transaction confirmed in block %d", block))
	c.mu.Unlock()
	notify()

	c.opts.Notices.Show(NoticeConfirmed)
	c.log.Info("transaction confirmed", zap.String("tx_hash", hash.Hex()), zap.Uint64("block", block))
	monitor.ObserveOperation(string(OpSend), "success")
	c.record(journal.Event{Type: journal.TypeConfirmed, TxHash: hash.Hex(), BlockNumber: block, Succeeded: &ok})
	return nil
}

// submit hands the call to the wallet and records the hash in memory and in the
// store before returning.
func (c *Controller) submit(ctx context.Context) (common.Hash, *wallet.Signer, error) {
	rctx, cancel := c.requestCtx(ctx)
	defer cancel()

	signer, err := c.signer(rctx)
	if err != nil {
		return common.Hash{}, nil, err
	}
	msg, err := c.callMsg()
	if err != nil {
		return common.Hash{}, nil, err
	}
	if est := c.EstimatedGas(); est != nil {
		msg.Gas = BufferedGasLimit(est)
	}

	hash, err := signer.SendTransaction(rctx, msg)
	if err != nil {
		return common.Hash{}, nil, err
	}
	hex := hash.Hex()

	c.mu.Lock()
	c.txHash = hex
	c.blockNumber = nil
	c.receiptOK = nil
	c.message = "Transaction sent. Hash: " + hex
	c.mu.Unlock()

	if err := c.opts.Store.Set(ctx, c.opts.StoreKey, hex); err != nil {
		c.log.Error("failed to persist last transaction", zap.String("tx_hash", hex), zap.Error(err))
	}
	c.log.Info("transaction submitted", zap.String("tx_hash", hex), zap.Stringer("from", signer.Address()))

	ev := journal.Event{
		Type:    journal.TypeSubmitted,
		TxHash:  hex,
		From:    signer.Address().Hex(),
		To:      msg.To.Hex(),
		Method:  c.opts.Call.Signature(),
		ChainID: c.opts.Target.IDHex(),
	}
	if msg.Gas != nil {
		ev.GasLimit = msg.Gas.String()
	}
	c.record(ev)
	return hash, signer, nil
}

func (c *Controller) record(ev journal.Event) {
	if c.opts.Journal == nil {
		return
	}
	// 发布失败不影响交易流程
	if err := c.opts.Journal.Record(c.ctx, ev); err != nil {
		c.log.Warn("failed to publish journal event", zap.String("type", ev.Type), zap.Error(err))
	}
}
