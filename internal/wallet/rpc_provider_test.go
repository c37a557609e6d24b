package wallet

import (
	"context"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEth struct {
	mu       sync.Mutex
	accounts []string
	chainID  int64
}

func (f *fakeEth) ChainId() *hexutil.Big {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*hexutil.Big)(big.NewInt(f.chainID))
}

func (f *fakeEth) Accounts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.accounts...)
}

func (f *fakeEth) set(accounts []string, chainID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = accounts
	f.chainID = chainID
}

type fakeWalletAPI struct{}

func (fakeWalletAPI) SwitchEthereumChain(params map[string]interface{}) error {
	return &Error{Code: CodeUnrecognizedChain, Message: "Unrecognized chain ID", Data: params["chainId"]}
}

func startFakeWallet(t *testing.T, eth *fakeEth) string {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", eth))
	require.NoError(t, server.RegisterName("wallet", fakeWalletAPI{}))

	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		server.Stop()
	})
	return ts.URL
}

func TestDialAndRequest(t *testing.T) {
	eth := &fakeEth{accounts: []string{"0xabc"}, chainID: 1}
	url := startFakeWallet(t, eth)

	p, err := Dial(context.Background(), url, 0)
	require.NoError(t, err)
	defer p.Close()

	raw, err := p.Request(context.Background(), "eth_chainId")
	require.NoError(t, err)
	assert.JSONEq(t, `"0x1"`, string(raw))

	_, err = p.Request(context.Background(), "wallet_switchEthereumChain", map[string]string{"chainId": "0x2611"})
	require.Error(t, err)
	code, ok := ErrorCode(err)
	require.True(t, ok)
	assert.Equal(t, CodeUnrecognizedChain, code)
}

func TestDetect(t *testing.T) {
	assert.Nil(t, Detect(context.Background(), "", time.Second))
	assert.Nil(t, Detect(context.Background(), "http://127.0.0.1:1", time.Second))
}

func TestPollerEmitsChanges(t *testing.T) {
	eth := &fakeEth{accounts: []string{"0xabc"}, chainID: 1}
	url := startFakeWallet(t, eth)

	p, err := Dial(context.Background(), url, 10*time.Millisecond)
	require.NoError(t, err)

	accounts := make(chan []string, 4)
	chains := make(chan string, 4)
	unsubA := p.OnAccountsChanged(func(a []string) { accounts <- a })
	unsubC := p.OnChainChanged(func(c string) { chains <- c })

	p.Start(context.Background())
	defer p.Close()

	eth.set([]string{}, 0x2611)

	select {
	case got := <-accounts:
		assert.Empty(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no accountsChanged notification")
	}
	select {
	case got := <-chains:
		assert.Equal(t, "0x2611", got)
	case <-time.After(2 * time.Second):
		t.Fatal("no chainChanged notification")
	}

	unsubA()
	unsubC()
	assert.Equal(t, 0, p.Subscribers())
}
