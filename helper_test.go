package papertrade

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// t0 is the time of the first transaction of test accounts.
var t0 = time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC)

// testClock returns a clock that ticks one second per call. It is safe for
// concurrent use, as registry options must be.
func testClock() func() time.Time {
	var mu sync.Mutex
	next := t0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

// testIDs returns an id generator yielding "tx-1", "tx-2", ...
func testIDs() func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		i++
		return fmt.Sprintf("tx-%d", i)
	}
}

// testOpts makes test accounts deterministic.
func testOpts() []Option {
	return []Option{WithClock(testClock()), WithIDGenerator(testIDs())}
}

// newTestAccount opens an account priced with DefaultPrices.
func newTestAccount(t *testing.T, id string, initial float64) *Account {
	t.Helper()
	a, err := NewAccount(id, USD(initial), DefaultPrices(), testOpts()...)
	if err != nil {
		t.Fatalf("NewAccount(%q, %v) error = %v", id, initial, err)
	}
	return a
}

// must panics on error, for test fixtures.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// replayedBalance recomputes the balance from the initial deposit and the log.
func replayedBalance(a *Account) Money {
	balance := a.InitialDeposit()
	for _, tx := range a.Transactions() {
		balance = balance.Add(tx.Cash())
	}
	return balance
}
