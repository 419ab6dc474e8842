package papertrade

import (
	"maps"
	"slices"
)

// PriceOracle gives the current unit price of a symbol.
//
// It returns false when the symbol cannot be priced. Implementations must be
// safe for concurrent use and must not call back into an Account.
type PriceOracle interface {
	Price(symbol string) (Money, bool)
}

// OracleFunc adapts a function to the PriceOracle interface.
type OracleFunc func(symbol string) (Money, bool)

func (f OracleFunc) Price(symbol string) (Money, bool) { return f(symbol) }

// StaticPrices is a fixed price table. It must not be modified while in use.
type StaticPrices map[string]Money

func (p StaticPrices) Price(symbol string) (Money, bool) {
	price, ok := p[symbol]
	return price, ok
}

// Symbols returns the priced symbols in alphabetical order.
func (p StaticPrices) Symbols() []string {
	return slices.Sorted(maps.Keys(p))
}

// DefaultPrices returns the reference price table.
func DefaultPrices() StaticPrices {
	return StaticPrices{
		"AAPL":  M(150.0, "USD"),
		"TSLA":  M(200.0, "USD"),
		"GOOGL": M(3000.0, "USD"),
	}
}

// priceIn asks the oracle for a usable price in currency.
// Zero, negative or foreign prices are reported as unknown.
func priceIn(oracle PriceOracle, symbol, currency string) (Money, bool) {
	price, ok := oracle.Price(symbol)
	if !ok || !price.IsPositive() {
		return Money{}, false
	}
	return price.in(currency)
}
