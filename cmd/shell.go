package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/renderer"
)

// shellCmd holds the flags for the 'shell' subcommand.
type shellCmd struct {
	plain    bool
	currency string
	prices   string
}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "trade interactively on paper accounts" }
func (*shellCmd) Usage() string {
	return `pts shell [-plain] [-currency <code>] [-prices <file>]

  Starts an interactive session. Type 'help' for the list of commands.
  Accounts live as long as the session, use 'export' to save a log.
`
}

func (c *shellCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "print raw markdown instead of rendering it")
	f.StringVar(&c.currency, "currency", "", "currency of new accounts, overrides the configuration")
	f.StringVar(&c.prices, "prices", "", "JSON price file, overrides the configuration")
}

func (c *shellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.currency != "" {
		cfg.Currency = c.currency
	}
	if c.prices != "" {
		cfg.PricesFile = c.prices
	}
	oracle, err := cfg.Oracle(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}
	publisher, release := newPublisher(cfg)
	defer release()

	s := newSession(papertrade.NewRegistry(oracle), cfg.Currency, os.Stdout, c.plain)
	s.publisher = publisher
	if err := s.run(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// errQuit ends a session.
var errQuit = errors.New("quit")

// session is an interactive shell over a registry. One account at a time
// is the current one, the target of trading commands.
type session struct {
	registry  *papertrade.Registry
	publisher papertrade.Publisher
	currency  string
	current   *papertrade.Account
	out       io.Writer
	plain     bool
}

func newSession(registry *papertrade.Registry, currency string, out io.Writer, plain bool) *session {
	return &session{registry: registry, currency: currency, out: out, plain: plain}
}

// shellCommand is a command of the session.
type shellCommand struct {
	args  string // args is the usage of the arguments.
	help  string
	nargs []int // nargs is the list of accepted argument counts.
	run   func(s *session, ctx context.Context, args []string) error
}

var shellCommands map[string]shellCommand

func init() {
	// initialized here because 'help' reads the map.
	shellCommands = map[string]shellCommand{
		"open":     {"<id> <initial deposit>", "open an account and make it current", []int{2}, (*session).open},
		"use":      {"<id>", "make an open account current", []int{1}, (*session).use},
		"accounts": {"", "list the open accounts", []int{0}, (*session).accounts},
		"close":    {"<id>", "close an account", []int{1}, (*session).close},
		"deposit":  {"<amount>", "deposit cash", []int{1}, (*session).deposit},
		"withdraw": {"<amount>", "withdraw cash", []int{1}, (*session).withdraw},
		"buy":      {"<symbol> <quantity>", "buy shares at the current price", []int{2}, (*session).buy},
		"sell":     {"<symbol> <quantity>", "sell shares at the current price", []int{2}, (*session).sell},
		"holdings": {"", "show the holdings and their market value", []int{0}, (*session).holdings},
		"tx":       {"", "show the transaction log", []int{0}, (*session).transactions},
		"summary":  {"", "show the account summary", []int{0}, (*session).summary},
		"gains":    {"[average|fifo]", "split gains into realized and unrealized", []int{0, 1}, (*session).gains},
		"prices":   {"[symbol...]", "show current prices", nil, (*session).prices},
		"export":   {"<file>", "write the transaction log as JSON lines", []int{1}, (*session).export},
		"help":     {"", "show this help", []int{0}, (*session).help},
		"quit":     {"", "end the session", []int{0}, func(*session, context.Context, []string) error { return errQuit }},
	}
}

// run reads commands from in until it is exhausted or the user quits.
func (s *session) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "paper trading shell, type 'help' for the list of commands.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if err := s.exec(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *session) prompt() string {
	if s.current == nil {
		return "> "
	}
	return s.current.ID() + "> "
}

// exec runs a single command line.
func (s *session) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == "exit" {
		name = "quit"
	}
	c, ok := shellCommands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, type 'help' for the list of commands", fields[0])
	}
	if c.nargs != nil && !slices.Contains(c.nargs, len(args)) {
		return fmt.Errorf("usage: %s %s", name, c.args)
	}
	return c.run(s, ctx, args)
}

// account returns the current account.
func (s *session) account() (*papertrade.Account, error) {
	if s.current == nil {
		return nil, errors.New("no current account, use 'open' or 'use' first")
	}
	return s.current, nil
}

// recorded prints a one line report of tx and publishes it.
func (s *session) recorded(ctx context.Context, a *papertrade.Account, tx papertrade.Transaction) {
	fmt.Fprintf(s.out, "%s, balance %s\n", renderer.Transaction(tx), tx.BalanceAfter())
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, papertrade.NewEvent(a.ID(), a.Seq(tx.TxID()), tx)); err != nil {
		logrus.WithError(err).WithField("account_id", a.ID()).Warn("cannot publish event")
	}
}

func (s *session) open(_ context.Context, args []string) error {
	initial, err := papertrade.ParseMoney(args[1], s.currency)
	if err != nil {
		return err
	}
	a, err := s.registry.Open(args[0], initial)
	if err != nil {
		return err
	}
	s.current = a
	fmt.Fprintf(s.out, "opened account %s with %s\n", a.ID(), a.Balance())
	return nil
}

func (s *session) use(_ context.Context, args []string) error {
	a, err := s.registry.Account(args[0])
	if err != nil {
		return err
	}
	s.current = a
	return nil
}

func (s *session) accounts(context.Context, []string) error {
	var summaries []papertrade.Summary
	for _, id := range s.registry.IDs() {
		a, err := s.registry.Account(id)
		if err != nil {
			continue // closed meanwhile
		}
		summary, err := a.Summary()
		if err != nil {
			return err
		}
		summaries = append(summaries, summary)
	}
	printMarkdown(s.out, renderer.Accounts(summaries), s.plain)
	return nil
}

func (s *session) close(_ context.Context, args []string) error {
	if err := s.registry.Close(args[0]); err != nil {
		return err
	}
	if s.current != nil && s.current.ID() == args[0] {
		s.current = nil
	}
	fmt.Fprintf(s.out, "closed account %s\n", args[0])
	return nil
}

func (s *session) deposit(ctx context.Context, args []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	amount, err := papertrade.ParseMoney(args[0], a.Currency())
	if err != nil {
		return err
	}
	tx, err := a.Deposit(amount)
	if err != nil {
		return err
	}
	s.recorded(ctx, a, tx)
	return nil
}

func (s *session) withdraw(ctx context.Context, args []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	amount, err := papertrade.ParseMoney(args[0], a.Currency())
	if err != nil {
		return err
	}
	tx, err := a.Withdraw(amount)
	if err != nil {
		return err
	}
	s.recorded(ctx, a, tx)
	return nil
}

func (s *session) buy(ctx context.Context, args []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	quantity, err := papertrade.ParseQuantity(args[1])
	if err != nil {
		return err
	}
	tx, err := a.Buy(strings.ToUpper(args[0]), quantity)
	if err != nil {
		return err
	}
	s.recorded(ctx, a, tx)
	return nil
}

func (s *session) sell(ctx context.Context, args []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	quantity, err := papertrade.ParseQuantity(args[1])
	if err != nil {
		return err
	}
	tx, err := a.Sell(strings.ToUpper(args[0]), quantity)
	if err != nil {
		return err
	}
	s.recorded(ctx, a, tx)
	return nil
}

func (s *session) holdings(context.Context, []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	lines, err := a.ValuedHoldings()
	if err != nil {
		return err
	}
	printMarkdown(s.out, renderer.Holdings(a.ID(), lines), s.plain)
	return nil
}

func (s *session) transactions(context.Context, []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	printMarkdown(s.out, renderer.Transactions(a.ID(), a.Transactions()), s.plain)
	return nil
}

func (s *session) summary(context.Context, []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	summary, err := a.Summary()
	if err != nil {
		return err
	}
	printMarkdown(s.out, renderer.Summary(summary), s.plain)
	return nil
}

func (s *session) gains(_ context.Context, args []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	var name string
	if len(args) > 0 {
		name = strings.ToLower(args[0])
	}
	method, err := papertrade.ParseCostBasisMethod(name)
	if err != nil {
		return err
	}
	report, err := a.Gains(method)
	if err != nil {
		return err
	}
	printMarkdown(s.out, renderer.Gains(a.ID(), report), s.plain)
	return nil
}

func (s *session) prices(_ context.Context, args []string) error {
	symbols := make([]string, 0, len(args))
	for _, a := range args {
		symbols = append(symbols, strings.ToUpper(a))
	}
	if len(symbols) == 0 {
		symbols = knownSymbols(s.registry.Oracle(), s.current)
	}
	printMarkdown(s.out, renderer.Prices(renderer.Quotes(s.registry.Oracle(), symbols)), s.plain)
	return nil
}

// knownSymbols lists the symbols of a static oracle, or those held by a.
func knownSymbols(oracle papertrade.PriceOracle, a *papertrade.Account) []string {
	if static, ok := oracle.(papertrade.StaticPrices); ok {
		return static.Symbols()
	}
	if a == nil {
		return nil
	}
	holdings := a.Holdings()
	symbols := make([]string, 0, len(holdings))
	for s := range holdings {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

func (s *session) export(_ context.Context, args []string) error {
	a, err := s.account()
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := papertrade.EncodeTransactions(f, a.Transactions()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "exported %s to %s, verify it with: pts verify -account %s -initial %s -currency %s %s\n",
		a.ID(), args[0], a.ID(), a.InitialDeposit().Decimal(), a.Currency(), args[0])
	return nil
}

func (s *session) help(context.Context, []string) error {
	names := make([]string, 0, len(shellCommands))
	for name := range shellCommands {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString("| Command | Description |\n|:---|:---|\n")
	for _, name := range names {
		c := shellCommands[name]
		fmt.Fprintf(&b, "| `%s` | %s |\n", strings.TrimSpace(name+" "+c.args), c.help)
	}
	printMarkdown(s.out, b.String(), s.plain)
	return nil
}
