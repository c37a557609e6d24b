package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Request account access from the wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			return rt.ctl.ConnectWallet(ctx)
		})
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Switch the wallet to the target network, adding it if unknown",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			if err := rt.ctl.SwitchToTargetChain(ctx); err != nil {
				return err
			}
			// 切换后重新读取会话, 展示新链
			return rt.ctl.ConnectWallet(ctx)
		})
	},
}

// withRuntime bootstraps, runs fn and prints the resulting snapshot. fn's error is
// already reflected in the snapshot, so it only sets the exit status.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	runErr := fn(ctx, rt)
	printSnapshot(cmd.OutOrStdout(), rt.ctl.Snapshot())
	if runErr != nil {
		cmd.SilenceErrors = true
		return runErr
	}
	return nil
}

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(switchCmd)
}
