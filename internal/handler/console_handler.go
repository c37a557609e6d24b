package handler

import (
	"context"
	_ "embed"
	"errors"
	"net/http"

	"operator-console/internal/clipboard"
	"operator-console/internal/controller"
	"operator-console/internal/handler/response"
	"operator-console/pkg/errno"
	"operator-console/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed web/index.html
var indexHTML []byte

// Console is the part of the controller the HTTP surface drives.
type Console interface {
	Snapshot() controller.Snapshot
	ConnectWallet(ctx context.Context) error
	SwitchToTargetChain(ctx context.Context) error
	EstimateGas(ctx context.Context) error
	Simulate(ctx context.Context) error
	Start(ctx context.Context, op controller.Operation) (<-chan error, error)
	CopyLastTransactionHash() error
	CopyLastTransactionHashTo(w clipboard.Writer) error
}

type ConsoleHandler struct {
	console Console
	log     *zap.Logger
}

func NewConsoleHandler(console Console) *ConsoleHandler {
	return &ConsoleHandler{console: console, log: logger.Named("handler")}
}

// Index serves the single-page console.
func (h *ConsoleHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// GetConsole 返回当前控制台快照
func (h *ConsoleHandler) GetConsole(c *gin.Context) {
	response.Success(c, h.console.Snapshot())
}

// ConnectWallet POST /api/v1/wallet/connect
func (h *ConsoleHandler) ConnectWallet(c *gin.Context) {
	h.respond(c, h.console.ConnectWallet(c.Request.Context()))
}

// SwitchNetwork POST /api/v1/network/switch
func (h *ConsoleHandler) SwitchNetwork(c *gin.Context) {
	h.respond(c, h.console.SwitchToTargetChain(c.Request.Context()))
}

// Estimate POST /api/v1/call/estimate
func (h *ConsoleHandler) Estimate(c *gin.Context) {
	h.respond(c, h.console.EstimateGas(c.Request.Context()))
}

// Simulate POST /api/v1/call/simulate
func (h *ConsoleHandler) Simulate(c *gin.Context) {
	h.respond(c, h.console.Simulate(c.Request.Context()))
}

// Send POST /api/v1/call/send
// 交易确认可能耗时数分钟: 受理后立即返回 pending 快照, 客户端轮询 /api/v1/console
func (h *ConsoleHandler) Send(c *gin.Context) {
	done, err := h.console.Start(context.WithoutCancel(c.Request.Context()), controller.OpSend)
	if err != nil {
		h.respond(c, err)
		return
	}
	go func() {
		if err := <-done; err != nil {
			h.log.Info("send finished with error", zap.Error(err))
		}
	}()
	response.Success(c, h.console.Snapshot())
}

// CopyTx POST /api/v1/tx/copy
// ?target=browser: 页面已写入浏览器剪贴板, 仅记录复制并弹出提示
func (h *ConsoleHandler) CopyTx(c *gin.Context) {
	if c.Query("target") == "browser" {
		h.respond(c, h.console.CopyLastTransactionHashTo(clipboard.Client{}))
		return
	}
	h.respond(c, h.console.CopyLastTransactionHash())
}

// NotFound answers unknown API paths with the error envelope.
func NotFound(c *gin.Context) {
	response.Error(c, errno.ErrNotFound)
}

// respond answers with the snapshot, inside an error envelope when err is set.
func (h *ConsoleHandler) respond(c *gin.Context, err error) {
	snap := h.console.Snapshot()
	if err != nil {
		response.ErrorWithData(c, ToErrno(err), snap)
		return
	}
	response.Success(c, snap)
}

// ToErrno maps controller errors onto envelope codes.
func ToErrno(err error) error {
	switch {
	case errors.Is(err, controller.ErrGateClosed):
		return errno.ErrGateClosed
	case errors.Is(err, controller.ErrBusy):
		return errno.ErrBusy
	case errors.Is(err, controller.ErrWalletUnavailable):
		return errno.ErrWalletUnavailable.WithMessage(controller.MsgWalletNotDetected)
	case errors.Is(err, controller.ErrNoTransaction):
		return errno.ErrNoTransaction
	case errors.Is(err, clipboard.ErrUnsupported):
		return errno.ErrClipboard
	}

	var opErr *controller.OperationError
	if errors.As(err, &opErr) {
		return errno.ErrOperationFailed.WithMessage(opErr.Message)
	}
	if msg := err.Error(); msg != "" {
		return errno.ErrOperationFailed.WithMessage(msg)
	}
	return errno.ErrOperationFailed
}
