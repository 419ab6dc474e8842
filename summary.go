package papertrade

import (
	"fmt"
	"maps"
	"slices"
)

// Summary is a snapshot of an account values.
type Summary struct {
	AccountID        string
	Currency         string
	Balance          Money // Balance is the cash on hand.
	PortfolioValue   Money // PortfolioValue is the market value of the holdings.
	TotalValue       Money // TotalValue is Balance + PortfolioValue.
	ProfitLoss       Money // ProfitLoss is TotalValue - InitialDeposit.
	InitialDeposit   Money
	Positions        int // Positions is the number of symbols held.
	TransactionCount int
}

// MarshalJSON implements the json.Marshaler interface for Summary.
func (s Summary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("account_id", s.AccountID)
	w.Append("currency", s.Currency)
	w.Append("balance", s.Balance.rounded())
	w.Append("portfolio_value", s.PortfolioValue.rounded())
	w.Append("total_value", s.TotalValue.rounded())
	w.Append("profit_loss", s.ProfitLoss.rounded())
	w.Append("initial_deposit", s.InitialDeposit.rounded())
	w.Append("positions", s.Positions)
	w.Append("transactions", s.TransactionCount)
	return w.MarshalJSON()
}

// Holding is one line of the holdings valued at the current price.
type Holding struct {
	Symbol      string
	Quantity    Quantity
	Price       Money
	MarketValue Money
}

// ValuedHoldings returns the holdings in alphabetical order with their market
// value. It fails with ErrUnknownSymbol like PortfolioValue.
func (a *Account) ValuedHoldings() ([]Holding, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	lines := make([]Holding, 0, len(a.holdings))
	for _, symbol := range sortedSymbols(a.holdings) {
		price, ok := priceIn(a.oracle, symbol, a.currency)
		if !ok {
			return nil, fmt.Errorf("%w: cannot value held symbol %q", ErrUnknownSymbol, symbol)
		}
		q := a.holdings[symbol]
		lines = append(lines, Holding{Symbol: symbol, Quantity: q, Price: price, MarketValue: price.Mul(q)})
	}
	return lines, nil
}

func sortedSymbols(holdings map[string]Quantity) []string {
	return slices.Sorted(maps.Keys(holdings))
}
