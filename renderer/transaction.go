package renderer

import (
	"fmt"

	"github.com/etnz/papertrade"
)

// Transaction renders a transaction to a string.
func Transaction(tx papertrade.Transaction) string {
	switch v := tx.(type) {
	case papertrade.Buy:
		return fmt.Sprintf("Bought %s %s at %s", v.Quantity, v.Symbol, v.Price)
	case papertrade.Sell:
		return fmt.Sprintf("Sold %s %s at %s", v.Quantity, v.Symbol, v.Price)
	case papertrade.Deposit:
		return fmt.Sprintf("Deposited %s", v.Amount)
	case papertrade.Withdrawal:
		return fmt.Sprintf("Withdrew %s", v.Amount)
	default:
		return string(tx.What())
	}
}

// Transactions renders a transaction log, oldest first.
func Transactions(accountID string, txs []papertrade.Transaction) string {
	view := struct {
		AccountID    string
		Transactions []papertrade.Transaction
	}{accountID, txs}
	return renderTemplate("transactions", "transactions.md", accountPartials(), view)
}
