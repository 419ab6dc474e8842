package papertrade

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// maxAccountIDLen bounds the length of an account id.
const maxAccountIDLen = 64

// symbolPattern is the shape of a ticker symbol: "AAPL", "BRK.B", "RDS-A".
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]{0,11}$`)

// Account is the ledger of a single brokerage account: a cash balance, share
// holdings and the log of every transaction that changed them.
//
// All methods are safe for concurrent use, operations on one account are
// serialized. A failed operation leaves the account unchanged.
type Account struct {
	mu sync.Mutex

	id       string
	currency string
	initial  Money
	oracle   PriceOracle
	now      func() time.Time
	newID    func() string

	balance      Money
	holdings     map[string]Quantity // only positive quantities.
	transactions []Transaction       // chronological, append only.
}

// Option configures an Account.
type Option func(*Account)

// WithClock sets the function used to timestamp transactions.
func WithClock(now func() time.Time) Option {
	return func(a *Account) { a.now = now }
}

// WithIDGenerator sets the function used to generate transaction ids.
func WithIDGenerator(newID func() string) Option {
	return func(a *Account) { a.newID = newID }
}

// NewAccount opens an account with an initial deposit.
//
// The account currency is the currency of initial, DefaultCurrency if it has
// none. The initial deposit is the baseline of the profit/loss and is not
// recorded as a transaction.
func NewAccount(id string, initial Money, oracle PriceOracle, opts ...Option) (*Account, error) {
	if err := ValidateAccountID(id); err != nil {
		return nil, err
	}
	if oracle == nil {
		return nil, fmt.Errorf("%w: missing price oracle", ErrInvalidArgument)
	}
	currency := initial.Currency()
	if currency == "" {
		currency = DefaultCurrency
	}
	if err := ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if initial.IsNegative() {
		return nil, fmt.Errorf("%w: initial deposit must be a non-negative number, got %v", ErrInvalidArgument, initial)
	}
	initial, _ = initial.in(currency)

	a := &Account{
		id:       id,
		currency: currency,
		initial:  initial,
		oracle:   oracle,
		now:      time.Now,
		newID:    uuid.NewString,
		balance:  initial,
		holdings: make(map[string]Quantity),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ValidateAccountID checks that id can identify an account.
func ValidateAccountID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: account id must be a non-empty string", ErrInvalidArgument)
	}
	if len(id) > maxAccountIDLen {
		return fmt.Errorf("%w: account id is longer than %d characters", ErrInvalidArgument, maxAccountIDLen)
	}
	if strings.IndexFunc(id, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return fmt.Errorf("%w: account id %q contains spaces or control characters", ErrInvalidArgument, id)
	}
	return nil
}

// ID returns the account id.
func (a *Account) ID() string { return a.id }

// Currency returns the currency of every amount in the account.
func (a *Account) Currency() string { return a.currency }

// InitialDeposit returns the balance at creation.
func (a *Account) InitialDeposit() Money { return a.initial }

// Balance returns the cash on hand.
func (a *Account) Balance() Money {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Position returns the number of shares held for symbol, zero if none.
func (a *Account) Position(symbol string) Quantity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holdings[symbol]
}

// Holdings returns a copy of the holdings: symbol to quantity held.
func (a *Account) Holdings() map[string]Quantity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.holdings)
}

// Transactions returns a copy of the transaction log, oldest first.
func (a *Account) Transactions() []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	txs := make([]Transaction, len(a.transactions))
	copy(txs, a.transactions)
	return txs
}

// Seq returns the 1-based position of the transaction txID in the log, 0 if
// it is not there.
func (a *Account) Seq(txID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.transactions) - 1; i >= 0; i-- {
		if a.transactions[i].TxID() == txID {
			return i + 1
		}
	}
	return 0
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount Money) (Deposit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	amount, err := a.checkAmount("deposit", amount)
	if err != nil {
		return Deposit{}, err
	}
	balance := a.balance.Add(amount)
	tx := NewDeposit(a.newID(), a.timestamp(), amount, balance)
	a.record(tx, balance)
	return tx, nil
}

// Withdraw removes amount from the balance. It cannot overdraw the account.
func (a *Account) Withdraw(amount Money) (Withdrawal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	amount, err := a.checkAmount("withdrawal", amount)
	if err != nil {
		return Withdrawal{}, err
	}
	if amount.GreaterThan(a.balance) {
		return Withdrawal{}, fmt.Errorf("%w: available balance %v, requested %v", ErrInsufficientFunds, a.balance, amount)
	}
	balance := a.balance.Sub(amount)
	tx := NewWithdrawal(a.newID(), a.timestamp(), amount, balance)
	a.record(tx, balance)
	return tx, nil
}

// Buy purchases quantity shares of symbol at the oracle price.
func (a *Account) Buy(symbol string, quantity Quantity) (Buy, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := checkTrade(symbol, quantity); err != nil {
		return Buy{}, err
	}
	price, ok := priceIn(a.oracle, symbol, a.currency)
	if !ok {
		return Buy{}, fmt.Errorf("%w: cannot price %q in %s", ErrUnknownSymbol, symbol, a.currency)
	}
	cost := price.Mul(quantity)
	if cost.GreaterThan(a.balance) {
		return Buy{}, fmt.Errorf("%w: cannot buy %v %s, cost %v, available balance %v", ErrInsufficientFunds, quantity, symbol, cost, a.balance)
	}

	balance := a.balance.Sub(cost)
	tx := NewBuy(a.newID(), a.timestamp(), symbol, quantity, price, balance)
	a.holdings[symbol] = a.holdings[symbol].Add(quantity)
	a.record(tx, balance)
	return tx, nil
}

// Sell sells quantity shares of symbol at the oracle price.
//
// Holdings are checked before the price is looked up: selling a symbol that
// is not held reports ErrInsufficientHoldings even if it cannot be priced.
func (a *Account) Sell(symbol string, quantity Quantity) (Sell, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := checkTrade(symbol, quantity); err != nil {
		return Sell{}, err
	}
	held, ok := a.holdings[symbol]
	if !ok {
		return Sell{}, fmt.Errorf("%w: no shares of %s held", ErrInsufficientHoldings, symbol)
	}
	if held.LessThan(quantity) {
		return Sell{}, fmt.Errorf("%w: cannot sell %v %s, only %v held", ErrInsufficientHoldings, quantity, symbol, held)
	}
	price, ok := priceIn(a.oracle, symbol, a.currency)
	if !ok {
		return Sell{}, fmt.Errorf("%w: cannot price %q in %s", ErrUnknownSymbol, symbol, a.currency)
	}

	revenue := price.Mul(quantity)
	balance := a.balance.Add(revenue)
	tx := NewSell(a.newID(), a.timestamp(), symbol, quantity, price, balance)
	if left := held.Sub(quantity); left.IsZero() {
		delete(a.holdings, symbol)
	} else {
		a.holdings[symbol] = left
	}
	a.record(tx, balance)
	return tx, nil
}

// PortfolioValue returns the market value of the holdings.
//
// It fails with ErrUnknownSymbol if any held symbol cannot be priced.
func (a *Account) PortfolioValue() (Money, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolioValue()
}

// TotalValue returns the balance plus the portfolio value.
func (a *Account) TotalValue() (Money, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pv, err := a.portfolioValue()
	if err != nil {
		return Money{}, err
	}
	return a.balance.Add(pv), nil
}

// ProfitLoss returns the total value minus the initial deposit.
//
// It blends realized and unrealized gains, and counts deposits and
// withdrawals made after creation. See Gains for a split.
func (a *Account) ProfitLoss() (Money, error) {
	s, err := a.Summary()
	if err != nil {
		return Money{}, err
	}
	return s.ProfitLoss, nil
}

// Summary returns a snapshot of the account values, computed from a single
// consistent state.
func (a *Account) Summary() (Summary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pv, err := a.portfolioValue()
	if err != nil {
		return Summary{}, err
	}
	total := a.balance.Add(pv)
	return Summary{
		AccountID:        a.id,
		Currency:         a.currency,
		Balance:          a.balance,
		PortfolioValue:   pv,
		TotalValue:       total,
		ProfitLoss:       total.Sub(a.initial),
		InitialDeposit:   a.initial,
		Positions:        len(a.holdings),
		TransactionCount: len(a.transactions),
	}, nil
}

func (a *Account) portfolioValue() (Money, error) {
	value := M(0, a.currency)
	for _, symbol := range sortedSymbols(a.holdings) {
		price, ok := priceIn(a.oracle, symbol, a.currency)
		if !ok {
			return Money{}, fmt.Errorf("%w: cannot value held symbol %q", ErrUnknownSymbol, symbol)
		}
		value = value.Add(price.Mul(a.holdings[symbol]))
	}
	return value, nil
}

// checkAmount validates a cash amount and returns it in the account currency.
func (a *Account) checkAmount(what string, amount Money) (Money, error) {
	amount, ok := amount.in(a.currency)
	if !ok {
		return Money{}, fmt.Errorf("%w: %s amount in %s, account is in %s", ErrInvalidArgument, what, amount.Currency(), a.currency)
	}
	if !amount.IsPositive() {
		return Money{}, fmt.Errorf("%w: %s amount must be a positive number, got %v", ErrInvalidArgument, what, amount)
	}
	return amount, nil
}

// checkTrade validates the shape of a buy or sell order.
func checkTrade(symbol string, quantity Quantity) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: share symbol must be a non-empty ticker, got %q", ErrInvalidArgument, symbol)
	}
	if !quantity.IsPositive() || !quantity.IsInteger() {
		return fmt.Errorf("%w: quantity must be a positive integer, got %v", ErrInvalidArgument, quantity)
	}
	return nil
}

// timestamp returns the time of a new transaction, never before the last one.
func (a *Account) timestamp() time.Time {
	now := a.now()
	if n := len(a.transactions); n > 0 {
		if last := a.transactions[n-1].When(); now.Before(last) {
			return last
		}
	}
	return now
}

// record appends tx and commits the new balance. It is the only place where
// the balance changes after creation.
func (a *Account) record(tx Transaction, balance Money) {
	a.balance = balance
	a.transactions = append(a.transactions, tx)
}
