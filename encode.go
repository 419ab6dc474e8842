package papertrade

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// The transaction log is encoded as JSONL: one transaction per line, keys in
// a fixed order, amounts as exact decimal strings. It is meant to be read by
// humans, diffed and replayed with Replay.

// EncodeTransaction writes a single transaction as a JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal %s transaction %s: %w", tx.What(), tx.TxID(), err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeTransactions writes all the transactions, in order.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	bw := bufio.NewWriter(w)
	for _, tx := range txs {
		if err := EncodeTransaction(bw, tx); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeTransactions reads a JSONL transaction log. Empty lines are skipped.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}
		tx, err := DecodeTransaction(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read transaction log: %w", err)
	}
	return txs, nil
}
