package renderer

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/etnz/papertrade"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// document is the structure of a rendered markdown report.
type document struct {
	headings []string
	tables   [][][]string // table, row, cell; the header is row 0.
	text     []string     // paragraphs
}

// parseMarkdown parses a report with the GitHub table extension.
func parseMarkdown(t *testing.T, md string) document {
	t.Helper()
	content := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(content))

	var doc document
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, inlineText(n, content))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			doc.text = append(doc.text, inlineText(n, content))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			var table [][]string
			for row := n.FirstChild(); row != nil; row = row.NextSibling() {
				var cells []string
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					cells = append(cells, inlineText(cell, content))
				}
				table = append(table, cells)
			}
			doc.tables = append(doc.tables, table)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return doc
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// lookup returns the cell in column col of the first row whose first cell is key.
func lookup(table [][]string, key string, col int) string {
	for _, row := range table {
		if len(row) > col && row[0] == key {
			return row[col]
		}
	}
	return ""
}

func newAccount(t *testing.T) *papertrade.Account {
	t.Helper()
	now := time.Date(2025, time.March, 3, 14, 0, 0, 0, time.UTC)
	clock := func() time.Time { now = now.Add(time.Minute); return now }
	a, err := papertrade.NewAccount("A1", papertrade.M(10000, "USD"), papertrade.DefaultPrices(), papertrade.WithClock(clock))
	if err != nil {
		t.Fatalf("NewAccount() error = %v", err)
	}
	return a
}

func TestSummary(t *testing.T) {
	a := newAccount(t)
	if _, err := a.Buy("AAPL", papertrade.Q(10)); err != nil {
		t.Fatal(err)
	}
	s, err := a.Summary()
	if err != nil {
		t.Fatal(err)
	}

	doc := parseMarkdown(t, Summary(s))
	if !slices.Equal(doc.headings, []string{"Account A1"}) {
		t.Errorf("headings = %q, want [Account A1]", doc.headings)
	}
	if len(doc.tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(doc.tables))
	}
	want := map[string]string{
		"Cash balance":    "$8,500.00",
		"Portfolio value": "$1,500.00",
		"Total value":     "$10,000.00",
		"Initial deposit": "$10,000.00",
		"Profit/loss":     "-",
		"Positions":       "1",
		"Transactions":    "1",
	}
	for key, value := range want {
		if got := lookup(doc.tables[0], key, 1); got != value {
			t.Errorf("%s = %q, want %q", key, got, value)
		}
	}
}

func TestHoldings(t *testing.T) {
	a := newAccount(t)
	for _, s := range []string{"TSLA", "AAPL"} {
		if _, err := a.Buy(s, papertrade.Q(2)); err != nil {
			t.Fatal(err)
		}
	}
	lines, err := a.ValuedHoldings()
	if err != nil {
		t.Fatal(err)
	}

	doc := parseMarkdown(t, Holdings("A1", lines))
	if !slices.Equal(doc.headings, []string{"Account A1", "Holdings"}) {
		t.Errorf("headings = %q", doc.headings)
	}
	if len(doc.tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(doc.tables))
	}
	table := doc.tables[0]
	if len(table) != 4 {
		t.Fatalf("got %d rows, want header, 2 holdings and total", len(table))
	}
	if table[1][0] != "AAPL" || table[2][0] != "TSLA" {
		t.Errorf("symbols = %s, %s, want AAPL, TSLA", table[1][0], table[2][0])
	}
	if got := lookup(table, "TSLA", 3); got != "$400.00" {
		t.Errorf("TSLA market value = %q, want $400.00", got)
	}
	if got := lookup(table, "Total", 3); got != "$700.00" {
		t.Errorf("total = %q, want $700.00", got)
	}
}

func TestHoldings_Empty(t *testing.T) {
	doc := parseMarkdown(t, Holdings("A1", nil))
	if len(doc.tables) != 0 {
		t.Errorf("got %d tables, want none", len(doc.tables))
	}
	if !slices.Contains(doc.text, "No shares held.") {
		t.Errorf("paragraphs = %q, want No shares held.", doc.text)
	}
}

func TestTransactions(t *testing.T) {
	a := newAccount(t)
	steps := []func() error{
		func() error { _, err := a.Deposit(papertrade.M(500, "USD")); return err },
		func() error { _, err := a.Buy("AAPL", papertrade.Q(3)); return err },
		func() error { _, err := a.Sell("AAPL", papertrade.Q(1)); return err },
		func() error { _, err := a.Withdraw(papertrade.M(20, "USD")); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}

	doc := parseMarkdown(t, Transactions("A1", a.Transactions()))
	if len(doc.tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(doc.tables))
	}
	table := doc.tables[0]
	want := [][]string{
		{"#", "Time", "Operation", "Cash", "Balance"},
		{"1", "2025-03-03 14:01:00", "Deposited $500.00", "+$500.00", "$10,500.00"},
		{"2", "2025-03-03 14:02:00", "Bought 3 AAPL at $150.00", "-$450.00", "$10,050.00"},
		{"3", "2025-03-03 14:03:00", "Sold 1 AAPL at $150.00", "+$150.00", "$10,200.00"},
		{"4", "2025-03-03 14:04:00", "Withdrew $20.00", "-$20.00", "$10,180.00"},
	}
	if len(table) != len(want) {
		t.Fatalf("got %d rows, want %d", len(table), len(want))
	}
	for i := range want {
		if !slices.Equal(table[i], want[i]) {
			t.Errorf("row %d = %q, want %q", i, table[i], want[i])
		}
	}
}

func TestTransactions_Empty(t *testing.T) {
	doc := parseMarkdown(t, Transactions("A1", nil))
	if !slices.Contains(doc.text, "No transactions.") {
		t.Errorf("paragraphs = %q, want No transactions.", doc.text)
	}
}

func TestGains(t *testing.T) {
	a := newAccount(t)
	if _, err := a.Buy("AAPL", papertrade.Q(2)); err != nil {
		t.Fatal(err)
	}
	report, err := a.Gains(papertrade.FIFO)
	if err != nil {
		t.Fatal(err)
	}

	doc := parseMarkdown(t, Gains("A1", report))
	if !slices.Contains(doc.text, "Method: fifo") {
		t.Errorf("paragraphs = %q, want Method: fifo", doc.text)
	}
	if len(doc.tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(doc.tables))
	}
	if got := lookup(doc.tables[0], "AAPL", 2); got != "$300.00" {
		t.Errorf("AAPL cost basis = %q, want $300.00", got)
	}
	if got := lookup(doc.tables[0], "Total", 4); got != "-" {
		t.Errorf("total realized = %q, want -", got)
	}
}

func TestPrices(t *testing.T) {
	quotes := Quotes(papertrade.DefaultPrices(), []string{"AAPL", "GOOGL", "ZZZZ"})
	doc := parseMarkdown(t, Prices(quotes))
	if !slices.Equal(doc.headings, []string{"Prices"}) {
		t.Errorf("headings = %q, want [Prices]", doc.headings)
	}
	if len(doc.tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(doc.tables))
	}
	want := map[string]string{"AAPL": "$150.00", "GOOGL": "$3,000.00", "ZZZZ": "unknown"}
	for symbol, price := range want {
		if got := lookup(doc.tables[0], symbol, 1); got != price {
			t.Errorf("price of %s = %q, want %q", symbol, got, price)
		}
	}
}

func TestAccounts(t *testing.T) {
	a := newAccount(t)
	s, err := a.Summary()
	if err != nil {
		t.Fatal(err)
	}
	doc := parseMarkdown(t, Accounts([]papertrade.Summary{s}))
	if len(doc.tables) != 1 || len(doc.tables[0]) != 2 {
		t.Fatalf("tables = %q, want one table with one account", doc.tables)
	}
	if got := lookup(doc.tables[0], "A1", 1); got != "$10,000.00" {
		t.Errorf("A1 total value = %q, want $10,000.00", got)
	}

	doc = parseMarkdown(t, Accounts(nil))
	if !slices.Contains(doc.text, "No open accounts.") {
		t.Errorf("paragraphs = %q, want No open accounts.", doc.text)
	}
}
