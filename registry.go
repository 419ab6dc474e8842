package papertrade

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry holds the accounts of a session, indexed by id.
//
// It is safe for concurrent use. Accounts are shared: two callers getting
// the same id operate on the same Account.
type Registry struct {
	oracle PriceOracle
	opts   []Option

	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewRegistry creates an empty registry. Accounts it opens price against
// oracle and are configured with opts.
//
// The same opts are shared by every account, and accounts do not share a
// lock: a clock or id generator given here must be safe for concurrent use.
func NewRegistry(oracle PriceOracle, opts ...Option) *Registry {
	return &Registry{
		oracle:   oracle,
		opts:     opts,
		accounts: make(map[string]*Account),
	}
}

// Oracle returns the price oracle shared by the accounts.
func (r *Registry) Oracle() PriceOracle { return r.oracle }

// Open creates a new account.
func (r *Registry) Open(id string, initial Money) (*Account, error) {
	a, err := NewAccount(id, initial, r.oracle, r.opts...)
	if err != nil {
		return nil, err
	}
	return a, r.add(a)
}

// Restore replays a transaction log into a new account of the registry.
func (r *Registry) Restore(id string, initial Money, txs []Transaction) (*Account, error) {
	a, err := Replay(id, initial, txs, r.oracle, r.opts...)
	if err != nil {
		return nil, err
	}
	return a, r.add(a)
}

func (r *Registry) add(a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[a.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrAccountExists, a.ID())
	}
	r.accounts[a.ID()] = a
	return nil
}

// Account returns the account with this id.
func (r *Registry) Account(id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, id)
	}
	return a, nil
}

// Close removes the account from the registry. Callers still holding it can
// keep using it.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return fmt.Errorf("%w: %q", ErrAccountNotFound, id)
	}
	delete(r.accounts, id)
	return nil
}

// IDs returns the ids of the accounts in alphabetical order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.accounts))
}
