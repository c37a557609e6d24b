package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"operator-console/pkg/logger"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// RPCProvider reaches a wallet over JSON-RPC (a desktop wallet's local port, a
// signer proxy, or a dev node with unlocked accounts).
//
// JSON-RPC has no accountsChanged/chainChanged push, so a background poller diffs
// eth_accounts and eth_chainId and emits through the hub when they change.
type RPCProvider struct {
	Hub

	client   *rpc.Client
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// poller state, only touched by the poll goroutine
	accounts []string
	chainID  string
}

// Dial connects to url and checks that the endpoint answers eth_chainId.
func Dial(ctx context.Context, url string, pollInterval time.Duration) (*RPCProvider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial wallet %s: %w", url, err)
	}

	var chainID hexutil.Big
	if err := client.CallContext(ctx, &chainID, "eth_chainId"); err != nil {
		client.Close()
		return nil, fmt.Errorf("query wallet %s chain id: %w", url, err)
	}

	p := &RPCProvider{
		client:   client,
		interval: pollInterval,
		chainID:  hexChain(&chainID),
	}
	return p, nil
}

// Detect returns a provider for url, or nil when no wallet is configured or the
// endpoint does not answer. A nil result means "wallet not detected".
func Detect(ctx context.Context, url string, pollInterval time.Duration) *RPCProvider {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	p, err := Dial(ctx, url, pollInterval)
	if err != nil {
		logger.Warn("钱包端点不可用", zap.String("url", url), zap.Error(err))
		return nil
	}
	return p
}

// Request implements Provider.
func (p *RPCProvider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, params...); err != nil {
		return nil, err
	}
	return raw, nil
}

// Start launches the notification poller. It stops with ctx or Close.
func (p *RPCProvider) Start(ctx context.Context) {
	if p.interval <= 0 {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)

	// 以当前账户作为基线, 只在变化时通知
	if accounts, err := p.fetchAccounts(ctx); err == nil {
		p.accounts = accounts
	}

	p.wg.Add(1)
	go p.poll(ctx)
}

func (p *RPCProvider) poll(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *RPCProvider) pollOnce(ctx context.Context) {
	accounts, err := p.fetchAccounts(ctx)
	if err != nil {
		logger.Debug("eth_accounts 轮询失败", zap.Error(err))
	} else if !equalAccounts(accounts, p.accounts) {
		p.accounts = accounts
		p.EmitAccounts(accounts)
	}

	var id hexutil.Big
	if err := p.client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		logger.Debug("eth_chainId 轮询失败", zap.Error(err))
		return
	}
	if chainID := hexChain(&id); chainID != p.chainID {
		p.chainID = chainID
		p.EmitChain(chainID)
	}
}

func (p *RPCProvider) fetchAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Close stops the poller and closes the RPC client.
func (p *RPCProvider) Close() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.client.Close()
}

func hexChain(id *hexutil.Big) string {
	return "0x" + id.ToInt().Text(16)
}

func equalAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
