package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"operator-console/internal/clipboard"
	"operator-console/internal/controller"
	"operator-console/internal/handler"
	"operator-console/pkg/errno"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestToErrno(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"gate", controller.ErrGateClosed, errno.ErrGateClosed.Code, errno.ErrGateClosed.Message},
		{"busy", controller.ErrBusy, errno.ErrBusy.Code, errno.ErrBusy.Message},
		{"wallet", controller.ErrWalletUnavailable, errno.ErrWalletUnavailable.Code, controller.MsgWalletNotDetected},
		{"no tx", controller.ErrNoTransaction, errno.ErrNoTransaction.Code, errno.ErrNoTransaction.Message},
		{"clipboard", fmt.Errorf("copy: %w", clipboard.ErrUnsupported), errno.ErrClipboard.Code, errno.ErrClipboard.Message},
		{
			"classified",
			&controller.OperationError{Op: controller.OpSend, Kind: controller.FailureCancelled, Message: "User rejected transaction"},
			errno.ErrOperationFailed.Code,
			"User rejected transaction",
		},
		{"raw", errors.New("boom"), errno.ErrOperationFailed.Code, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := errno.Decode(handler.ToErrno(tt.err))
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestIndexAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.NewConsoleHandler(nil)

	r := gin.New()
	r.GET("/", h.Index)
	r.GET("/health", handler.HealthCheck)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/api/v1/console")
	assert.Contains(t, w.Body.String(), "navigator.clipboard.writeText(last.tx_hash)")
	assert.Contains(t, w.Body.String(), "/api/v1/tx/copy?target=browser")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"msg":"Success","data":{"status":"UP","version":"dev","service":"operator-console"}}`, w.Body.String())
}

func TestNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(handler.NotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":10003,"msg":"Not found","data":{}}`, w.Body.String())
}
