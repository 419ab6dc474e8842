package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/renderer"
)

// verifyCmd holds the flags for the 'verify' subcommand.
type verifyCmd struct {
	account  string
	initial  string
	currency string
	plain    bool
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "replay an exported transaction log and check it" }
func (*verifyCmd) Usage() string {
	return `pts verify -initial <amount> [-account <id>] [-currency <code>] [-plain] <file>|-

  Replays a transaction log written by the shell 'export' command, from the
  initial deposit of the account. Every balance snapshot and every sell is
  checked. On success the summary of the rebuilt account is displayed.
`
}

func (c *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "replay", "id of the replayed account")
	f.StringVar(&c.initial, "initial", "", "initial deposit of the account (required)")
	f.StringVar(&c.currency, "currency", "", "currency of the account, overrides the configuration")
	f.BoolVar(&c.plain, "plain", false, "print raw markdown instead of rendering it")
}

func (c *verifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.initial == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.currency == "" {
		c.currency = cfg.Currency
	}
	oracle, err := cfg.Oracle(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	in := io.Reader(os.Stdin)
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening transaction log: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	md, err := c.verify(in, oracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(os.Stdout, md, c.plain)
	return subcommands.ExitSuccess
}

// verify replays the log in r and returns the summary of the account.
func (c *verifyCmd) verify(r io.Reader, oracle papertrade.PriceOracle) (string, error) {
	initial, err := papertrade.ParseMoney(c.initial, c.currency)
	if err != nil {
		return "", err
	}
	txs, err := papertrade.DecodeTransactions(r)
	if err != nil {
		return "", err
	}
	a, err := papertrade.Replay(c.account, initial, txs, oracle)
	if err != nil {
		return "", err
	}
	summary, err := a.Summary()
	if err != nil {
		return "", fmt.Errorf("log replayed, but the account cannot be valued: %w", err)
	}
	return renderer.Summary(summary), nil
}
