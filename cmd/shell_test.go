package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/papertrade"
)

func newTestSession(out *bytes.Buffer) *session {
	return newSession(papertrade.NewRegistry(papertrade.DefaultPrices()), "USD", out, true)
}

func TestSession_Run(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)

	script := strings.Join([]string{
		"open A1 10000",
		"buy aapl 10",
		"holdings",
		"withdraw 20000",
		"buy ZZZZ 1",
		"sell AAPL 10",
		"summary",
		"quit",
		"deposit 1", // never read
	}, "\n")

	if err := s.run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"opened account A1 with $10,000.00",
		"Bought 10 AAPL at $150.00, balance $8,500.00",
		"| AAPL | 10 | $150.00 | $1,500.00 |",
		"error: insufficient funds",
		"error: unknown symbol",
		"Sold 10 AAPL at $150.00, balance $10,000.00",
		"| Profit/loss | - |",
		"A1> ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q\noutput:\n%s", want, got)
		}
	}

	a, err := s.registry.Account("A1")
	if err != nil {
		t.Fatal(err)
	}
	if n := len(a.Transactions()); n != 2 {
		t.Errorf("len(Transactions()) = %d, want 2", n)
	}
}

func TestSession_Exec(t *testing.T) {
	testCases := []struct {
		name    string
		setup   []string
		line    string
		wantErr string
	}{
		{name: "empty line", line: "   "},
		{name: "comment", line: "# buy AAPL 1"},
		{name: "unknown command", line: "short TSLA 1", wantErr: `unknown command "short"`},
		{name: "no current account", line: "deposit 10", wantErr: "no current account"},
		{name: "wrong argument count", line: "open A1", wantErr: "usage: open <id> <initial deposit>"},
		{name: "not a number", setup: []string{"open A1 100"}, line: "deposit ten", wantErr: "invalid argument"},
		{name: "duplicate account", setup: []string{"open A1 100"}, line: "open A1 5", wantErr: "account already exists"},
		{name: "use unknown account", line: "use B", wantErr: "account not found"},
		{name: "sell not held", setup: []string{"open A1 100"}, line: "sell TSLA 1", wantErr: "insufficient holdings"},
		{name: "bad gains method", setup: []string{"open A1 100"}, line: "gains lifo", wantErr: "unknown cost basis method"},
		{name: "quit", line: "QUIT", wantErr: "quit"},
		{name: "exit", line: "exit", wantErr: "quit"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			s := newTestSession(&out)
			ctx := context.Background()
			for _, line := range tc.setup {
				if err := s.exec(ctx, line); err != nil {
					t.Fatalf("exec(%q) error = %v", line, err)
				}
			}
			err := s.exec(ctx, tc.line)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("exec(%q) error = %v, want nil", tc.line, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("exec(%q) error = %v, want %q", tc.line, err, tc.wantErr)
			}
		})
	}
}

func TestSession_Accounts(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)
	ctx := context.Background()
	for _, line := range []string{"open A1 100", "open B2 250", "use A1", "close B2", "accounts"} {
		if err := s.exec(ctx, line); err != nil {
			t.Fatalf("exec(%q) error = %v", line, err)
		}
	}
	if s.current == nil || s.current.ID() != "A1" {
		t.Errorf("current account = %v, want A1", s.current)
	}
	got := out.String()
	if !strings.Contains(got, "| A1 | $100.00 | - |") || strings.Contains(got, "| B2 |") {
		t.Errorf("accounts output:\n%s\nwant A1 only", got)
	}

	if err := s.exec(ctx, "close A1"); err != nil {
		t.Fatal(err)
	}
	if s.current != nil {
		t.Error("closing the current account did not reset it")
	}
}

func TestSession_Reports(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)
	ctx := context.Background()
	for _, line := range []string{"open A1 10000", "buy TSLA 5", "deposit 100", "tx", "gains fifo", "prices", "prices aapl zzzz", "help"} {
		if err := s.exec(ctx, line); err != nil {
			t.Fatalf("exec(%q) error = %v", line, err)
		}
	}
	got := out.String()
	for _, want := range []string{
		"## Transactions",
		"Bought 5 TSLA at $200.00",
		"Deposited $100.00",
		"Method: fifo",
		"| TSLA | 5 | $1,000.00 | $1,000.00 | - | - |",
		"| GOOGL | $3,000.00 |",
		"| ZZZZ | unknown |",
		"| `buy <symbol> <quantity>` |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q\noutput:\n%s", want, got)
		}
	}
}

func TestSession_ExportVerify(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "a1.jsonl")
	for _, line := range []string{"open A1 5000", "buy GOOGL 1", "sell GOOGL 1", "withdraw 99.99", "export " + file} {
		if err := s.exec(ctx, line); err != nil {
			t.Fatalf("exec(%q) error = %v", line, err)
		}
	}
	if !strings.Contains(out.String(), "pts verify -account A1 -initial 5000 -currency USD "+file) {
		t.Errorf("export output:\n%s\nwant the verify command line", out.String())
	}

	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	c := &verifyCmd{account: "A1", initial: "5000", currency: "USD"}
	md, err := c.verify(f, papertrade.DefaultPrices())
	if err != nil {
		t.Fatalf("verify() error = %v", err)
	}
	if !strings.Contains(md, "| Cash balance | $4,900.01 |") {
		t.Errorf("verify() summary:\n%s\nwant balance $4,900.01", md)
	}
}

func TestVerify_Corrupt(t *testing.T) {
	log := `{"id":"1","type":"deposit","time":"2025-01-10T09:30:00Z","amount":"10","currency":"USD","balance":"999"}`
	c := &verifyCmd{account: "A1", initial: "100", currency: "USD"}
	_, err := c.verify(strings.NewReader(log), papertrade.DefaultPrices())
	if err == nil || !strings.Contains(err.Error(), "corrupt transaction log") {
		t.Errorf("verify() error = %v, want a corrupt log error", err)
	}
}

func TestSession_ExportCurrency(t *testing.T) {
	var out bytes.Buffer
	s := newSession(papertrade.NewRegistry(papertrade.DefaultPrices()), "EUR", &out, true)
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "e1.jsonl")
	for _, line := range []string{"open E1 100", "deposit 50", "export " + file} {
		if err := s.exec(ctx, line); err != nil {
			t.Fatalf("exec(%q) error = %v", line, err)
		}
	}
	if !strings.Contains(out.String(), "-initial 100 -currency EUR "+file) {
		t.Fatalf("export output:\n%s\nwant -currency EUR", out.String())
	}

	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	c := &verifyCmd{account: "E1", initial: "100", currency: "EUR"}
	if _, err := c.verify(f, papertrade.DefaultPrices()); err != nil {
		t.Errorf("verify() error = %v", err)
	}
}
