package renderer

import "github.com/etnz/papertrade"

// Holdings renders the valued holdings of an account and their total.
func Holdings(accountID string, lines []papertrade.Holding) string {
	view := struct {
		AccountID string
		Lines     []papertrade.Holding
		Total     papertrade.Money
	}{AccountID: accountID, Lines: lines}
	for _, l := range lines {
		view.Total = view.Total.Add(l.MarketValue)
	}
	return renderTemplate("holdings", "holdings.md", accountPartials(), view)
}

// Quote is a line of the price table.
type Quote struct {
	Symbol string
	Price  papertrade.Money
	Known  bool // Known is false when the oracle cannot price Symbol.
}

// Quotes asks oracle for the price of every symbol.
func Quotes(oracle papertrade.PriceOracle, symbols []string) []Quote {
	quotes := make([]Quote, 0, len(symbols))
	for _, s := range symbols {
		p, ok := oracle.Price(s)
		quotes = append(quotes, Quote{Symbol: s, Price: p, Known: ok})
	}
	return quotes
}

// Prices renders a price table.
func Prices(quotes []Quote) string {
	return renderTemplate("prices", "prices.md", nil, quotes)
}
