package server

import (
	"operator-console/internal/handler"
	"operator-console/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(console *handler.ConsoleHandler) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/", console.Index)
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/console", console.GetConsole)
		api.POST("/wallet/connect", console.ConnectWallet)
		api.POST("/network/switch", console.SwitchNetwork)

		call := api.Group("/call")
		call.POST("/estimate", console.Estimate)
		call.POST("/simulate", console.Simulate)
		call.POST("/send", console.Send)

		api.POST("/tx/copy", console.CopyTx)
	}
	r.NoRoute(handler.NotFound)

	return r
}
