package cmd

import (
	"fmt"
	"io"

	"operator-console/internal/controller"

	"github.com/fatih/color"
)

var (
	labelColor = color.New(color.Bold)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
)

func stateColor(s controller.State) *color.Color {
	switch s {
	case controller.StateConfirmed, controller.StateSimulated:
		return okColor
	case controller.StateEstimating, controller.StatePending:
		return warnColor
	case controller.StateError:
		return errColor
	default:
		return color.New(color.Reset)
	}
}

func field(w io.Writer, label, value string) {
	if value == "" {
		value = "-"
	}
	labelColor.Fprintf(w, "%-18s", label)
	fmt.Fprintln(w, value)
}

// printSnapshot renders the console panels.
func printSnapshot(w io.Writer, s controller.Snapshot) {
	if !s.WalletDetected {
		errColor.Fprintln(w, "Wallet not detected")
	}
	field(w, "Account", s.Address)
	field(w, "Chain", s.ChainID)
	field(w, "Target", fmt.Sprintf("%s (%s)", s.Target.Name, s.Target.ChainID))
	if s.ShowSwitchNetwork {
		warnColor.Fprintln(w, "Wallet is on another network, run `operator-console switch`.")
	}
	fmt.Fprintln(w)

	field(w, "Contract", s.Contract.Address)
	field(w, "Explorer", s.Contract.URL)
	field(w, "Function", s.Contract.Signature)
	for _, a := range s.Contract.Args {
		field(w, "  "+a.Name, fmt.Sprintf("%s (%s)", a.Value, a.Type))
	}
	fmt.Fprintln(w)

	labelColor.Fprintf(w, "%-18s", "Status")
	stateColor(s.State).Fprintf(w, "[%s] %s\n", s.State, s.Message)
	if s.EstimatedGas != "" {
		gas := s.EstimatedGas
		if s.EstimatedFee != "" {
			gas += " (~" + s.EstimatedFee + ")"
		}
		field(w, "Estimated gas", gas)
	}
	field(w, "Last transaction", s.TxHash)
	if s.TxURL != "" {
		field(w, "", s.TxURL)
	}
	if s.BlockNumber != nil {
		field(w, "Block", fmt.Sprint(*s.BlockNumber))
	}
	if s.Notice != "" {
		okColor.Fprintf(w, "✔ %s\n", s.Notice)
	}
}
