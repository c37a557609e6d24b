package wallet

import (
	"sync"
)

// Hub fans accountsChanged / chainChanged notifications out to subscribers.
// The zero value is ready to use.
type Hub struct {
	mu       sync.Mutex
	nextID   int
	accounts map[int]func([]string)
	chains   map[int]func(string)
}

// OnAccountsChanged registers fn and returns its unsubscribe handle.
func (h *Hub) OnAccountsChanged(fn func(accounts []string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.accounts == nil {
		h.accounts = make(map[int]func([]string))
	}
	id := h.nextID
	h.nextID++
	h.accounts[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.accounts, id)
		h.mu.Unlock()
	}
}

// OnChainChanged registers fn and returns its unsubscribe handle.
func (h *Hub) OnChainChanged(fn func(chainID string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.chains == nil {
		h.chains = make(map[int]func(string))
	}
	id := h.nextID
	h.nextID++
	h.chains[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.chains, id)
		h.mu.Unlock()
	}
}

// EmitAccounts delivers accounts to every subscriber, outside the hub lock.
func (h *Hub) EmitAccounts(accounts []string) {
	h.mu.Lock()
	fns := make([]func([]string), 0, len(h.accounts))
	for _, fn := range h.accounts {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		cp := append([]string(nil), accounts...)
		fn(cp)
	}
}

// EmitChain delivers chainID to every subscriber, outside the hub lock.
func (h *Hub) EmitChain(chainID string) {
	h.mu.Lock()
	fns := make([]func(string), 0, len(h.chains))
	for _, fn := range h.chains {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(chainID)
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.accounts) + len(h.chains)
}
