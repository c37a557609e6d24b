package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"operator-console/internal/controller"
	"operator-console/internal/handler"
	"operator-console/internal/server"
	"operator-console/internal/wallet"
	"operator-console/internal/wallet/wallettest"
	"operator-console/pkg/errno"
	"operator-console/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	account = "0x1111111111111111111111111111111111111111"
	txHash  = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type envelope struct {
	Code int                 `json:"code"`
	Msg  string              `json:"msg"`
	Data controller.Snapshot `json:"data"`
}

func setup(t *testing.T) (*gin.Engine, *wallettest.Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := wallettest.New().
		Returns("eth_requestAccounts", []string{account}).
		Returns("eth_accounts", []string{account}).
		Returns("eth_chainId", "0x2611")

	c, err := controller.New(context.Background(), controller.Options{
		Provider:    p,
		Store:       store.NewMemoryStore(),
		ReceiptPoll: 5 * time.Millisecond,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return server.NewHTTPRouter(handler.NewConsoleHandler(c)), p
}

func do(t *testing.T, r http.Handler, method, path string) envelope {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestConsoleFlow(t *testing.T) {
	r, p := setup(t)

	env := do(t, r, http.MethodGet, "/api/v1/console")
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "Ready to interact with contract.", env.Data.Message)
	assert.Equal(t, "0x2611", env.Data.Target.ChainID)
	assert.Equal(t, "setAccountOperator(address,address,bool)", env.Data.Contract.Signature)

	env = do(t, r, http.MethodPost, "/api/v1/call/estimate")
	assert.Equal(t, errno.ErrGateClosed.Code, env.Code)

	env = do(t, r, http.MethodPost, "/api/v1/wallet/connect")
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, account, env.Data.Address)
	assert.True(t, env.Data.CanInteract)

	p.Returns("eth_estimateGas", "0x5208")
	env = do(t, r, http.MethodPost, "/api/v1/call/estimate")
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "Estimated gas: 21000 units", env.Data.Message)

	p.Fails("eth_call", &wallet.Error{Code: 3, Message: "execution reverted", Data: "0x01"})
	env = do(t, r, http.MethodPost, "/api/v1/call/simulate")
	assert.Equal(t, errno.ErrOperationFailed.Code, env.Code)
	assert.Equal(t, "Simulation revert: 0x01", env.Msg)
	assert.Equal(t, controller.StateError, env.Data.State)

	p.Returns("eth_sendTransaction", txHash).
		Returns("eth_getTransactionReceipt", map[string]string{
			"transactionHash": txHash,
			"blockNumber":     "0x10",
			"status":          "0x1",
			"gasUsed":         "0x5208",
		})
	env = do(t, r, http.MethodPost, "/api/v1/call/send")
	assert.Equal(t, 0, env.Code)

	assert.Eventually(t, func() bool {
		return do(t, r, http.MethodGet, "/api/v1/console").Data.State == controller.StateConfirmed
	}, 2*time.Second, 10*time.Millisecond)

	env = do(t, r, http.MethodGet, "/api/v1/console")
	assert.Equal(t, txHash, env.Data.TxHash)
	assert.Equal(t, "Transaction confirmed in block 16", env.Data.Message)

	env = do(t, r, http.MethodPost, "/api/v1/tx/copy")
	assert.Equal(t, errno.ErrClipboard.Code, env.Code)

	env = do(t, r, http.MethodPost, "/api/v1/tx/copy?target=browser")
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, controller.NoticeCopied, env.Data.Notice)
}

func TestCopyWithoutTransaction(t *testing.T) {
	r, _ := setup(t)
	env := do(t, r, http.MethodPost, "/api/v1/tx/copy")
	assert.Equal(t, errno.ErrNoTransaction.Code, env.Code)
}

func TestSwitchNetworkRejected(t *testing.T) {
	r, p := setup(t)
	p.Fails("wallet_switchEthereumChain", &wallet.Error{Code: 4001, Message: "User rejected the request."})

	env := do(t, r, http.MethodPost, "/api/v1/network/switch")
	assert.Equal(t, errno.ErrOperationFailed.Code, env.Code)
	assert.Equal(t, "User rejected network switch", env.Msg)
}

func TestMetricsExposed(t *testing.T) {
	r, _ := setup(t)
	do(t, r, http.MethodGet, "/health")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console_http_requests_total")
}

func TestUnknownAPIPath(t *testing.T) {
	r, p := setup(t)

	env := do(t, r, http.MethodPost, "/api/v1/call/deploy")
	assert.Equal(t, errno.ErrNotFound.Code, env.Code)
	assert.Equal(t, errno.ErrNotFound.Message, env.Msg)
	assert.Empty(t, p.Calls())
}
