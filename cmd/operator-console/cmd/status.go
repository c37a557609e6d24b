package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var statusConnect bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the console state and the last transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			if statusConnect && rt.provider != nil {
				return rt.ctl.ConnectWallet(ctx)
			}
			return nil
		})
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy the last transaction hash to the clipboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			return rt.ctl.CopyLastTransactionHash()
		})
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusConnect, "connect", false, "request account access to show the session")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(copyCmd)
}
