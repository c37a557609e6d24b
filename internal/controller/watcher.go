package controller

import (
	"operator-console/pkg/monitor"

	"go.uber.org/zap"
)

// Watch subscribes to the wallet's account and chain notifications until Close.
// Call it once per controller.
func (c *Controller) Watch() {
	if c.opts.Provider == nil {
		return
	}
	unsubAccounts := c.opts.Provider.OnAccountsChanged(c.handleAccountsChanged)
	unsubChain := c.opts.Provider.OnChainChanged(c.handleChainChanged)

	c.mu.Lock()
	c.unsubscribe = append(c.unsubscribe, unsubAccounts, unsubChain)
	c.mu.Unlock()
}

// handleAccountsChanged adopts the first account, or disconnects on an empty list.
// The chain id is left untouched.
func (c *Controller) handleAccountsChanged(accounts []string) {
	c.mu.Lock()
	prev := c.session.Address
	if len(accounts) == 0 {
		c.session.Address = ""
	} else {
		c.session.Address = accounts[0]
	}
	changed := prev != c.session.Address
	if changed {
		c.estimatedGas = nil
		c.estimatedFee = ""
	}
	connected := c.session.Connected()
	c.mu.Unlock()

	if !changed {
		return
	}
	if connected {
		c.log.Info("wallet account changed", zap.String("address", accounts[0]))
	} else {
		c.log.Info("wallet disconnected")
	}
	monitor.SetWalletConnected(connected)
}

// handleChainChanged replaces the recorded chain id unconditionally.
func (c *Controller) handleChainChanged(chainID string) {
	c.mu.Lock()
	changed := c.session.ChainID != chainID
	c.session.ChainID = chainID
	if changed {
		c.estimatedGas = nil
		c.estimatedFee = ""
	}
	c.mu.Unlock()

	if changed {
		c.log.Info("wallet chain changed", zap.String("chain_id", chainID))
	}
}
