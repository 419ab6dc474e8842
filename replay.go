package papertrade

import (
	"errors"
	"fmt"
	"time"
)

// Replay rebuilds an account from its initial deposit and transaction log.
//
// Every transaction is checked against the state rebuilt so far: its cash
// movement must be allowed, its balance snapshot must match, and a sell must
// be covered by the holdings, and ids must be unique. Prices are taken from the log, the oracle is
// only used by the valuation methods of the returned account.
// All inconsistencies are reported, each wrapping ErrCorruptLog.
func Replay(id string, initial Money, txs []Transaction, oracle PriceOracle, opts ...Option) (*Account, error) {
	a, err := NewAccount(id, initial, oracle, opts...)
	if err != nil {
		return nil, err
	}
	var errs error
	var last time.Time
	seen := make(map[string]int, len(txs))
	for i, tx := range txs {
		if first, ok := seen[tx.TxID()]; ok {
			errs = errors.Join(errs, fmt.Errorf("%w: transaction #%d (%s %s) reuses the id of transaction #%d", ErrCorruptLog, i+1, tx.What(), tx.TxID(), first))
		} else {
			seen[tx.TxID()] = i + 1
		}
		if err := a.replay(tx); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%w: transaction #%d (%s %s): %w", ErrCorruptLog, i+1, tx.What(), tx.TxID(), err))
			continue
		}
		if tx.When().Before(last) {
			errs = errors.Join(errs, fmt.Errorf("%w: transaction #%d (%s %s) is dated before the previous one", ErrCorruptLog, i+1, tx.What(), tx.TxID()))
		}
		last = tx.When()
	}
	if errs != nil {
		return nil, errs
	}
	return a, nil
}

// replay applies a recorded transaction, checking it instead of creating it.
func (a *Account) replay(tx Transaction) error {
	cash, ok := tx.Cash().in(a.currency)
	if !ok {
		return fmt.Errorf("amount in %s, account is in %s", tx.Cash().Currency(), a.currency)
	}
	balance := a.balance.Add(cash)
	if balance.IsNegative() {
		return fmt.Errorf("balance would become %v", balance)
	}
	if after, _ := tx.BalanceAfter().in(a.currency); !after.Equal(balance) {
		return fmt.Errorf("balance snapshot %v, replayed balance %v", tx.BalanceAfter(), balance)
	}

	switch v := tx.(type) {
	case Deposit:
		if !v.Amount.IsPositive() {
			return fmt.Errorf("deposit amount must be positive, got %v", v.Amount)
		}
	case Withdrawal:
		if !v.Amount.IsPositive() {
			return fmt.Errorf("withdrawal amount must be positive, got %v", v.Amount)
		}
	case Buy:
		if err := checkRecordedTrade(v.tradeTx); err != nil {
			return err
		}
		a.holdings[v.Symbol] = a.holdings[v.Symbol].Add(v.Quantity)
	case Sell:
		if err := checkRecordedTrade(v.tradeTx); err != nil {
			return err
		}
		held := a.holdings[v.Symbol]
		if held.LessThan(v.Quantity) {
			return fmt.Errorf("cannot sell %v %s, only %v held", v.Quantity, v.Symbol, held)
		}
		if left := held.Sub(v.Quantity); left.IsZero() {
			delete(a.holdings, v.Symbol)
		} else {
			a.holdings[v.Symbol] = left
		}
	default:
		return fmt.Errorf("unsupported transaction type %T", tx)
	}
	a.record(tx, balance)
	return nil
}

func checkRecordedTrade(t tradeTx) error {
	if err := checkTrade(t.Symbol, t.Quantity); err != nil {
		return err
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("price must be positive, got %v", t.Price)
	}
	if !t.Amount.Decimal().Equal(t.Price.Decimal().Mul(t.Quantity.Decimal())) {
		return fmt.Errorf("amount %v is not %v × %v", t.Amount, t.Price, t.Quantity)
	}
	return nil
}
