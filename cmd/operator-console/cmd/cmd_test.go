package cmd

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"operator-console/internal/controller"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccount = "0x1111111111111111111111111111111111111111"
	testTxHash  = "0xcccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
)

// walletNode answers the eth namespace like a desktop wallet on the target chain.
type walletNode struct {
	mu      sync.Mutex
	methods []string
	sent    []map[string]interface{}
}

func (w *walletNode) record(method string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.methods = append(w.methods, method)
}

func (w *walletNode) calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.methods...)
}

func (w *walletNode) transactions() []map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]map[string]interface{}(nil), w.sent...)
}

func (w *walletNode) ChainId() *hexutil.Big {
	w.record("eth_chainId")
	return (*hexutil.Big)(big.NewInt(0x2611))
}

func (w *walletNode) Accounts() []string {
	w.record("eth_accounts")
	return []string{testAccount}
}

func (w *walletNode) RequestAccounts() []string {
	w.record("eth_requestAccounts")
	return []string{testAccount}
}

func (w *walletNode) EstimateGas(args map[string]interface{}) hexutil.Uint64 {
	w.record("eth_estimateGas")
	return 21000
}

func (w *walletNode) GasPrice() *hexutil.Big {
	w.record("eth_gasPrice")
	return (*hexutil.Big)(big.NewInt(1_000_000_000))
}

func (w *walletNode) SendTransaction(args map[string]interface{}) common.Hash {
	w.record("eth_sendTransaction")
	w.mu.Lock()
	w.sent = append(w.sent, args)
	w.mu.Unlock()
	return common.HexToHash(testTxHash)
}

func (w *walletNode) GetTransactionReceipt(hash common.Hash) map[string]interface{} {
	w.record("eth_getTransactionReceipt")
	return map[string]interface{}{
		"transactionHash": hash.Hex(),
		"blockNumber":     "0x10",
		"status":          "0x1",
		"gasUsed":         "0x5208",
	}
}

func startWalletNode(t *testing.T) (*walletNode, string) {
	t.Helper()
	node := &walletNode{}
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", node))

	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		server.Stop()
	})
	return node, ts.URL
}

// writeConfig writes a memory-backed config pointing at rpcURL.
func writeConfig(t *testing.T, rpcURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`app:
  env: test
  log_level: error
  http_port: "8080"
wallet:
  rpc_url: %q
  poll_interval: 1s
  request_timeout: 5s
  confirm_timeout: 5s
  receipt_poll: 10ms
store:
  driver: memory
  key: lastTxHash
journal:
  enabled: false
  driver: redis
  topic: console_events_tx
`, rpcURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func indexOf(methods []string, method string) int {
	for i, m := range methods {
		if m == method {
			return i
		}
	}
	return -1
}

func TestEstimateCommandPrintsSnapshot(t *testing.T) {
	node, url := startWalletNode(t)

	out, err := execute(t, "--config", writeConfig(t, url), "estimate")
	require.NoError(t, err)

	assert.Contains(t, out, testAccount)
	assert.Contains(t, out, "setAccountOperator(address,address,bool)")
	assert.Contains(t, out, "[idle] Estimated gas: 21000 units")
	assert.Contains(t, out, "21000 (~")
	assert.NotContains(t, out, "Wallet not detected")
	assert.Less(t, indexOf(node.calls(), "eth_requestAccounts"), indexOf(node.calls(), "eth_estimateGas"))
}

func TestSendCommandEstimatesFirst(t *testing.T) {
	node, url := startWalletNode(t)

	out, err := execute(t, "--config", writeConfig(t, url), "send", "--yes", "--estimate=true")
	require.NoError(t, err)

	calls := node.calls()
	estimated := indexOf(calls, "eth_estimateGas")
	sent := indexOf(calls, "eth_sendTransaction")
	require.NotEqual(t, -1, estimated)
	require.NotEqual(t, -1, sent)
	assert.Less(t, estimated, sent)
	assert.Less(t, sent, indexOf(calls, "eth_getTransactionReceipt"))

	txs := node.transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "0x5a3c", txs[0]["gas"])

	assert.Contains(t, out, "Waiting for confirmation...")
	assert.Contains(t, out, "Transaction confirmed in block 16")
	assert.Contains(t, out, testTxHash)
	assert.Less(t, bytes.Index([]byte(out), []byte("Waiting for confirmation...")), bytes.Index([]byte(out), []byte("[confirmed]")))
}

func TestSendCommandWithoutEstimate(t *testing.T) {
	node, url := startWalletNode(t)

	_, err := execute(t, "--config", writeConfig(t, url), "send", "--yes", "--estimate=false")
	require.NoError(t, err)

	assert.Equal(t, -1, indexOf(node.calls(), "eth_estimateGas"))
	txs := node.transactions()
	require.Len(t, txs, 1)
	assert.NotContains(t, txs[0], "gas")
}

func TestStatusWithoutWallet(t *testing.T) {
	out, err := execute(t, "--config", writeConfig(t, ""), "status", "--connect=false")
	require.NoError(t, err)

	assert.Contains(t, out, "Wallet not detected")
	assert.Contains(t, out, "Plasma")
	assert.Contains(t, out, "[idle]")
}

func TestCopyCommandReportsFailureAfterPrinting(t *testing.T) {
	_, url := startWalletNode(t)

	out, err := execute(t, "--config", writeConfig(t, url), "copy")
	assert.ErrorIs(t, err, controller.ErrNoTransaction)
	assert.Contains(t, out, "Status")
	assert.Contains(t, out, "Last transaction")
}
