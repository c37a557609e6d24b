package cmd

import (
	"operator-console/internal/handler"
	"operator-console/internal/server"
	"operator-console/pkg/config"
	"operator-console/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web console",
	Long:  `Serves the console page, its JSON API, /health and /metrics until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if config.Global.App.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.watch(ctx)

		r := server.NewHTTPRouter(handler.NewConsoleHandler(rt.ctl))
		app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)

		logger.Info("Operator console ready",
			zap.String("url", "http://localhost:"+config.Global.App.HttpPort+"/"),
			zap.Bool("wallet_detected", rt.provider != nil))

		// 运行 (阻塞)
		return app.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
