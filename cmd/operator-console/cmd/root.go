package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"operator-console/pkg/config"
	"operator-console/pkg/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "operator-console",
	Short: "Operator registry console for a JSON-RPC wallet",
	Long: `Connects a wallet over JSON-RPC, switches it to Plasma, and estimates,
simulates or sends setAccountOperator on the operator registry.

Run "serve" for the web console, or use the one-shot subcommands.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init(cfgFile)
		logger.Init(config.Global.App.Env, config.Global.App.LogLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml or ./config/config.yaml)")
}
