package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/papertrade/renderer"
)

// pricesCmd holds the flags for the 'prices' subcommand.
type pricesCmd struct {
	plain  bool
	prices string
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "display the current price of symbols" }
func (*pricesCmd) Usage() string {
	return `pts prices [-plain] [-prices <file>] [<symbol>...]

  Displays the price of each symbol. Without symbols, displays the whole
  reference price table.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "print raw markdown instead of rendering it")
	f.StringVar(&c.prices, "prices", "", "JSON price file, overrides the configuration")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.prices != "" {
		cfg.PricesFile = c.prices
	}
	oracle, err := cfg.Oracle(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	var symbols []string
	for _, s := range f.Args() {
		symbols = append(symbols, strings.ToUpper(s))
	}
	if len(symbols) == 0 {
		symbols = knownSymbols(oracle, nil)
	}
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "Error: the price file cannot be listed, give the symbols to price")
		return subcommands.ExitUsageError
	}

	printMarkdown(os.Stdout, renderer.Prices(renderer.Quotes(oracle, symbols)), c.plain)
	return subcommands.ExitSuccess
}
