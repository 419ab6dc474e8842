package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/etnz/papertrade"
)

type createAccountRequest struct {
	AccountID      string      `json:"account_id"`
	InitialDeposit json.Number `json:"initial_deposit"`
	Currency       string      `json:"currency"`
}

type amountRequest struct {
	Amount json.Number `json:"amount"`
}

type tradeRequest struct {
	Symbol   string      `json:"symbol"`
	Quantity json.Number `json:"quantity"`
}

type priceResponse struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

type gainsResponse struct {
	AccountID  string          `json:"account_id"`
	Method     string          `json:"method"`
	Currency   string          `json:"currency"`
	Securities []securityGains `json:"securities"`
	Realized   decimal.Decimal `json:"realized"`
	Unrealized decimal.Decimal `json:"unrealized"`
	Total      decimal.Decimal `json:"total"`
}

type securityGains struct {
	Symbol      string              `json:"symbol"`
	Quantity    papertrade.Quantity `json:"quantity"`
	CostBasis   decimal.Decimal     `json:"cost_basis"`
	MarketValue decimal.Decimal     `json:"market_value"`
	Realized    decimal.Decimal     `json:"realized"`
	Unrealized  decimal.Decimal     `json:"unrealized"`
}

// decode reads the JSON body of r into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", papertrade.ErrInvalidArgument, err)
	}
	return nil
}

// account returns the account named in the URL.
func (s *Server) account(r *http.Request) (*papertrade.Account, error) {
	return s.registry.Account(chi.URLParam(r, "id"))
}

// publish sends the event of tx. A failure is logged: the transaction is
// recorded whatever happens to its event.
func (s *Server) publish(ctx context.Context, a *papertrade.Account, tx papertrade.Transaction) {
	if s.publisher == nil {
		return
	}
	e := papertrade.NewEvent(a.ID(), a.Seq(tx.TxID()), tx)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.WithError(err).WithFields(map[string]any{
			"account_id": a.ID(),
			"event_id":   e.ID,
			"tx_id":      tx.TxID(),
		}).Warn("cannot publish event")
	}
}

func (s *Server) getPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	price, ok := s.registry.Oracle().Price(symbol)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: %q", papertrade.ErrUnknownSymbol, symbol))
		return
	}
	currency := price.Currency()
	if currency == "" {
		currency = s.currency
	}
	writeJSON(w, http.StatusOK, priceResponse{Symbol: symbol, Price: price.Decimal(), Currency: currency})
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}
	initial, err := papertrade.ParseMoney(req.InitialDeposit.String(), currency)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.registry.Open(req.AccountID, initial)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.WithField("account_id", a.ID()).Info("account opened")
	s.writeSummary(w, r, a, http.StatusCreated)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"accounts": s.registry.IDs()})
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.account(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSummary(w, r, a, http.StatusOK)
}

func (s *Server) writeSummary(w http.ResponseWriter, r *http.Request, a *papertrade.Account, status int) {
	summary, err := a.Summary()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, summary)
}

func (s *Server) closeAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.registry.Close(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.WithField("account_id", id).Info("account closed")
	w.WriteHeader(http.StatusNoContent)
}

// cashOperation handles deposits and withdrawals.
func (s *Server) cashOperation(w http.ResponseWriter, r *http.Request, do func(*papertrade.Account, papertrade.Money) (papertrade.Transaction, error)) {
	a, err := s.account(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req amountRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	amount, err := papertrade.ParseMoney(req.Amount.String(), a.Currency())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := do(a, amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r.Context(), a, tx)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	s.cashOperation(w, r, func(a *papertrade.Account, m papertrade.Money) (papertrade.Transaction, error) {
		return a.Deposit(m)
	})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	s.cashOperation(w, r, func(a *papertrade.Account, m papertrade.Money) (papertrade.Transaction, error) {
		return a.Withdraw(m)
	})
}

// trade handles buys and sells.
func (s *Server) trade(w http.ResponseWriter, r *http.Request, do func(*papertrade.Account, string, papertrade.Quantity) (papertrade.Transaction, error)) {
	a, err := s.account(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req tradeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	quantity, err := papertrade.ParseQuantity(req.Quantity.String())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := do(a, req.Symbol, quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r.Context(), a, tx)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) buy(w http.ResponseWriter, r *http.Request) {
	s.trade(w, r, func(a *papertrade.Account, symbol string, q papertrade.Quantity) (papertrade.Transaction, error) {
		return a.Buy(symbol, q)
	})
}

func (s *Server) sell(w http.ResponseWriter, r *http.Request) {
	s.trade(w, r, func(a *papertrade.Account, symbol string, q papertrade.Quantity) (papertrade.Transaction, error) {
		return a.Sell(symbol, q)
	})
}

func (s *Server) getHoldings(w http.ResponseWriter, r *http.Request) {
	a, err := s.account(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": a.ID(),
		"holdings":   a.Holdings(),
	})
}

func (s *Server) getTransactions(w http.ResponseWriter, r *http.Request) {
	a, err := s.account(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":   a.ID(),
		"transactions": a.Transactions(),
	})
}

func (s *Server) getGains(w http.ResponseWriter, r *http.Request) {
	a, err := s.account(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	method, err := papertrade.ParseCostBasisMethod(r.URL.Query().Get("method"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := a.Gains(method)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := gainsResponse{
		AccountID:  a.ID(),
		Method:     report.Method.String(),
		Currency:   report.Currency,
		Securities: make([]securityGains, 0, len(report.Securities)),
		Realized:   report.Realized.Decimal(),
		Unrealized: report.Unrealized.Decimal(),
		Total:      report.Total.Decimal(),
	}
	for _, g := range report.Securities {
		resp.Securities = append(resp.Securities, securityGains{
			Symbol:      g.Symbol,
			Quantity:    g.Quantity,
			CostBasis:   g.CostBasis.Decimal(),
			MarketValue: g.MarketValue.Decimal(),
			Realized:    g.Realized.Decimal(),
			Unrealized:  g.Unrealized.Decimal(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
