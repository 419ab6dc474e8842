// Package papertrade implements a paper-trading brokerage account: a cash
// balance, share holdings and an append-only transaction log, valued against
// a price oracle.
//
// The core functionalities include:
//   - Ledger Engine: deposits, withdrawals, buys and sells on an Account, each
//     validated before any state changes and recorded as an immutable
//     Transaction.
//   - Valuation: portfolio value, total value and profit/loss computed from the
//     holdings and the current prices given by a PriceOracle.
//   - Gains: realized and unrealized gains derived from the transaction log
//     with average-cost or FIFO lots.
//   - Registry: a set of accounts indexed by id, owned by the caller.
//   - Encoding: a human-readable JSONL form of the transaction log that can be
//     replayed and verified.
//
// This package serves as the foundational logic for the `pts` command-line
// tool and its HTTP API. It performs no I/O besides the encoding functions
// and never logs.
package papertrade
