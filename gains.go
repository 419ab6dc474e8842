package papertrade

import (
	"fmt"
	"maps"
	"slices"
)

// CostBasisMethod defines the method for calculating cost basis.
type CostBasisMethod int

const (
	// AverageCost calculates the cost basis by averaging the cost of all shares.
	AverageCost CostBasisMethod = iota
	// FIFO (First-In, First-Out) calculates the cost basis by assuming the first shares purchased are the first ones sold.
	FIFO
)

func (m CostBasisMethod) String() string {
	switch m {
	case AverageCost:
		return "average"
	case FIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch s {
	case "average", "":
		return AverageCost, nil
	case "fifo":
		return FIFO, nil
	default:
		return 0, fmt.Errorf("%w: unknown cost basis method %q", ErrInvalidArgument, s)
	}
}

// GainsReport splits the gains of the traded symbols into realized and
// unrealized parts.
type GainsReport struct {
	Method     CostBasisMethod
	Currency   string
	Securities []SecurityGains // in alphabetical order
	Realized   Money
	Unrealized Money
	Total      Money // Total is Realized + Unrealized.
}

// SecurityGains holds the gains of a single symbol.
type SecurityGains struct {
	Symbol      string
	Quantity    Quantity // Quantity is the position still held.
	CostBasis   Money    // CostBasis is the cost of the shares still held.
	MarketValue Money
	Realized    Money // Realized is the revenue of sells minus the cost of the shares sold.
	Unrealized  Money // Unrealized is MarketValue - CostBasis.
}

// Gains computes realized and unrealized gains from the transaction log.
//
// Unlike ProfitLoss it ignores cash movements: Total is the gain made by
// trading only. It fails with ErrUnknownSymbol if a held symbol cannot be
// priced.
func (a *Account) Gains(method CostBasisMethod) (GainsReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	zero := M(0, a.currency)
	open := make(map[string]lots)
	realized := make(map[string]Money)
	for _, tx := range a.transactions {
		switch v := tx.(type) {
		case Buy:
			open[v.Symbol] = open[v.Symbol].add(method, lot{Quantity: v.Quantity, Cost: v.Amount})
			if _, ok := realized[v.Symbol]; !ok {
				realized[v.Symbol] = zero
			}
		case Sell:
			l := open[v.Symbol]
			realized[v.Symbol] = realized[v.Symbol].Add(v.Amount.Sub(l.costOfSelling(v.Quantity)))
			open[v.Symbol] = l.sell(v.Quantity)
		}
	}

	report := GainsReport{Method: method, Currency: a.currency, Realized: zero, Unrealized: zero}
	for _, symbol := range slices.Sorted(maps.Keys(realized)) {
		g := SecurityGains{
			Symbol:      symbol,
			Quantity:    open[symbol].quantity(),
			CostBasis:   open[symbol].cost().Add(zero),
			MarketValue: zero,
			Realized:    realized[symbol],
		}
		if !g.Quantity.IsZero() {
			price, ok := priceIn(a.oracle, symbol, a.currency)
			if !ok {
				return GainsReport{}, fmt.Errorf("%w: cannot value held symbol %q", ErrUnknownSymbol, symbol)
			}
			g.MarketValue = price.Mul(g.Quantity)
		}
		g.Unrealized = g.MarketValue.Sub(g.CostBasis)
		report.Securities = append(report.Securities, g)
		report.Realized = report.Realized.Add(g.Realized)
		report.Unrealized = report.Unrealized.Add(g.Unrealized)
	}
	report.Total = report.Realized.Add(report.Unrealized)
	return report, nil
}

// lot is a purchase of shares still held, used for cost basis calculations.
type lot struct {
	Quantity Quantity
	Cost     Money // Total cost of the lot (quantity * price)
}

type lots []lot

// add appends a purchase. With AverageCost all purchases are merged into a
// single lot, so that selling from it is always at the average cost.
func (l lots) add(method CostBasisMethod, n lot) lots {
	if method == AverageCost && len(l) == 1 {
		return lots{{Quantity: l[0].Quantity.Add(n.Quantity), Cost: l[0].Cost.Add(n.Cost)}}
	}
	return append(l, n)
}

// costOfSelling calculates the cost of selling a quantity of shares, oldest lots first.
func (l lots) costOfSelling(quantityToSell Quantity) Money {
	var costOfSoldShares Money
	for _, currentLot := range l {
		if quantityToSell.IsZero() {
			break
		}
		if currentLot.Quantity.GreaterThan(quantityToSell) {
			// Partial sale from this lot
			return costOfSoldShares.Add(currentLot.Cost.Mul(quantityToSell).Div(currentLot.Quantity))
		}
		// Full sale of this lot
		costOfSoldShares = costOfSoldShares.Add(currentLot.Cost)
		quantityToSell = quantityToSell.Sub(currentLot.Quantity)
	}
	return costOfSoldShares
}

// sell removes a quantity of shares from the lots, oldest lots first.
func (l lots) sell(quantityToSell Quantity) lots {
	var remainingLots lots
	for _, currentLot := range l {
		if quantityToSell.IsZero() {
			remainingLots = append(remainingLots, currentLot)
			continue
		}
		if currentLot.Quantity.GreaterThan(quantityToSell) {
			// Partial sale from this lot
			costOfSoldPortion := currentLot.Cost.Mul(quantityToSell).Div(currentLot.Quantity)
			remainingLots = append(remainingLots, lot{
				Quantity: currentLot.Quantity.Sub(quantityToSell),
				Cost:     currentLot.Cost.Sub(costOfSoldPortion),
			})
			quantityToSell = Quantity{}
		} else {
			// Full sale of this lot
			quantityToSell = quantityToSell.Sub(currentLot.Quantity)
		}
	}
	return remainingLots
}

func (l lots) quantity() (q Quantity) {
	for _, lt := range l {
		q = q.Add(lt.Quantity)
	}
	return q
}

func (l lots) cost() (c Money) {
	for _, lt := range l {
		c = c.Add(lt.Cost)
	}
	return c
}
