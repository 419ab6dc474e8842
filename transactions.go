package papertrade

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TxType identifies the kind of a transaction.
type TxType string

// Transaction types, as written in the encoded log.
const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxBuy        TxType = "buy"
	TxSell       TxType = "sell"
)

// Transaction is an entry of an account transaction log.
//
// Implementations are Deposit, Withdrawal, Buy and Sell. They are values,
// a Transaction never changes once recorded.
type Transaction interface {
	TxID() string        // TxID returns the unique id of the transaction.
	What() TxType        // What returns the kind of transaction.
	When() time.Time     // When returns the time the transaction was recorded.
	Cash() Money         // Cash returns the signed change of the balance.
	BalanceAfter() Money // BalanceAfter returns the balance right after the transaction.
	Equal(Transaction) bool
}

// baseTx holds the fields common to all transactions.
type baseTx struct {
	ID      string    // ID is a UUID.
	Type    TxType    // Type is the kind of transaction.
	Time    time.Time // Time is when the transaction was recorded.
	Balance Money     // Balance is the account balance right after the transaction.
}

func (t baseTx) TxID() string        { return t.ID }
func (t baseTx) What() TxType        { return t.Type }
func (t baseTx) When() time.Time     { return t.Time }
func (t baseTx) BalanceAfter() Money { return t.Balance }

func (t baseTx) equal(o baseTx) bool {
	return t.ID == o.ID && t.Type == o.Type && t.Time.Equal(o.Time) && t.Balance.Equal(o.Balance)
}

// MarshalJSON implements the json.Marshaler interface for baseTx.
func (t baseTx) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("type", t.Type)
	w.Append("time", t.Time.UTC().Format(time.RFC3339Nano))
	return w.MarshalJSON()
}

// Deposit adds cash to the account.
type Deposit struct {
	baseTx
	Amount Money // Amount is the cash deposited.
}

// NewDeposit creates a Deposit transaction.
func NewDeposit(id string, at time.Time, amount, balance Money) Deposit {
	return Deposit{
		baseTx: baseTx{ID: id, Type: TxDeposit, Time: at, Balance: balance},
		Amount: amount,
	}
}

func (t Deposit) Cash() Money { return t.Amount }

func (t Deposit) Equal(other Transaction) bool {
	o, ok := other.(Deposit)
	return ok && t.baseTx.equal(o.baseTx) && t.Amount.Equal(o.Amount)
}

// MarshalJSON implements the json.Marshaler interface for Deposit.
func (t Deposit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("amount", t.Amount.value)
	w.Append("currency", t.Amount.cur)
	w.Append("balance", t.Balance.value)
	return w.MarshalJSON()
}

// Withdrawal removes cash from the account.
type Withdrawal struct {
	baseTx
	Amount Money // Amount is the cash withdrawn, always positive.
}

// NewWithdrawal creates a Withdrawal transaction.
func NewWithdrawal(id string, at time.Time, amount, balance Money) Withdrawal {
	return Withdrawal{
		baseTx: baseTx{ID: id, Type: TxWithdrawal, Time: at, Balance: balance},
		Amount: amount,
	}
}

func (t Withdrawal) Cash() Money { return t.Amount.Neg() }

func (t Withdrawal) Equal(other Transaction) bool {
	o, ok := other.(Withdrawal)
	return ok && t.baseTx.equal(o.baseTx) && t.Amount.Equal(o.Amount)
}

// MarshalJSON implements the json.Marshaler interface for Withdrawal.
func (t Withdrawal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("amount", t.Amount.value)
	w.Append("currency", t.Amount.cur)
	w.Append("balance", t.Balance.value)
	return w.MarshalJSON()
}

// tradeTx holds the fields common to buys and sells.
type tradeTx struct {
	baseTx
	Symbol   string   // Symbol is the ticker traded.
	Quantity Quantity // Quantity is the number of shares traded.
	Price    Money    // Price is the unit price given by the oracle.
	Amount   Money    // Amount is Price × Quantity, the cost of a buy or the revenue of a sell.
}

func (t tradeTx) equal(o tradeTx) bool {
	return t.baseTx.equal(o.baseTx) && t.Symbol == o.Symbol && t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) && t.Amount.Equal(o.Amount)
}

// MarshalJSON implements the json.Marshaler interface for tradeTx.
func (t tradeTx) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("symbol", t.Symbol)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.value)
	w.Append("amount", t.Amount.value)
	w.Append("currency", t.Amount.cur)
	w.Append("balance", t.Balance.value)
	return w.MarshalJSON()
}

// Buy purchases shares, the cost is debited from the balance.
type Buy struct {
	tradeTx
}

// NewBuy creates a Buy transaction, amount is price × quantity.
func NewBuy(id string, at time.Time, symbol string, quantity Quantity, price, balance Money) Buy {
	return Buy{tradeTx{
		baseTx:   baseTx{ID: id, Type: TxBuy, Time: at, Balance: balance},
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Amount:   price.Mul(quantity),
	}}
}

func (t Buy) Cash() Money { return t.Amount.Neg() }

func (t Buy) Equal(other Transaction) bool {
	o, ok := other.(Buy)
	return ok && t.tradeTx.equal(o.tradeTx)
}

// Sell sells shares, the revenue is credited to the balance.
type Sell struct {
	tradeTx
}

// NewSell creates a Sell transaction, amount is price × quantity.
func NewSell(id string, at time.Time, symbol string, quantity Quantity, price, balance Money) Sell {
	return Sell{tradeTx{
		baseTx:   baseTx{ID: id, Type: TxSell, Time: at, Balance: balance},
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Amount:   price.Mul(quantity),
	}}
}

func (t Sell) Cash() Money { return t.Amount }

func (t Sell) Equal(other Transaction) bool {
	o, ok := other.(Sell)
	return ok && t.tradeTx.equal(o.tradeTx)
}

// jtx is the flat decoded form of any encoded transaction.
type jtx struct {
	ID       string          `json:"id"`
	Type     TxType          `json:"type"`
	Time     time.Time       `json:"time"`
	Symbol   string          `json:"symbol"`
	Quantity Quantity        `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// DecodeTransaction parses a single encoded transaction.
func DecodeTransaction(data []byte) (Transaction, error) {
	var j jtx
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	if j.ID == "" {
		return nil, fmt.Errorf("transaction without id")
	}
	money := func(d decimal.Decimal) Money { return Money{value: d, cur: j.Currency} }
	base := baseTx{ID: j.ID, Type: j.Type, Time: j.Time, Balance: money(j.Balance)}

	switch j.Type {
	case TxDeposit:
		return Deposit{baseTx: base, Amount: money(j.Amount)}, nil
	case TxWithdrawal:
		return Withdrawal{baseTx: base, Amount: money(j.Amount)}, nil
	case TxBuy, TxSell:
		trade := tradeTx{
			baseTx:   base,
			Symbol:   j.Symbol,
			Quantity: j.Quantity,
			Price:    money(j.Price),
			Amount:   money(j.Amount),
		}
		if j.Type == TxBuy {
			return Buy{trade}, nil
		}
		return Sell{trade}, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %q", j.Type)
	}
}
