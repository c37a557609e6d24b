package cmd

import (
	"context"
	"errors"
	"fmt"

	"operator-console/internal/contract"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate gas for the configured call",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			if err := rt.ctl.ConnectWallet(ctx); err != nil {
				return err
			}
			return rt.ctl.EstimateGas(ctx)
		})
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Dry-run the configured call without submitting it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			if err := rt.ctl.ConnectWallet(ctx); err != nil {
				return err
			}
			return rt.ctl.Simulate(ctx)
		})
	},
}

var (
	sendYes      bool
	sendEstimate bool
)

var errAborted = errors.New("aborted")

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit the configured call and wait for its confirmation",
	Long: `Submits setAccountOperator through the wallet. With --estimate (default) the gas
is estimated first and the limit is padded by 10%; otherwise the wallet picks it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			if err := rt.ctl.ConnectWallet(ctx); err != nil {
				return err
			}
			if sendEstimate {
				if err := rt.ctl.EstimateGas(ctx); err != nil {
					return err
				}
			}
			if !sendYes {
				if err := confirmSend(rt); err != nil {
					return err
				}
			}
			warnColor.Fprintln(cmd.OutOrStdout(), "Waiting for confirmation...")
			return rt.ctl.SendTransaction(ctx)
		})
	},
}

func confirmSend(rt *runtime) error {
	snap := rt.ctl.Snapshot()
	label := fmt.Sprintf("Send %s to %s from %s", contract.Call.Signature(), snap.Contract.Address, snap.Address)
	if snap.EstimatedGas != "" {
		label += fmt.Sprintf(" (estimated gas %s)", snap.EstimatedGas)
	}
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return errAborted
		}
		return err
	}
	return nil
}

func init() {
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the confirmation prompt")
	sendCmd.Flags().BoolVar(&sendEstimate, "estimate", true, "estimate gas before sending")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(sendCmd)
}
