package papertrade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event notifies that a transaction was recorded on an account.
//
// Events may be published out of order, Seq restores the order of the log.
type Event struct {
	ID          string
	AccountID   string
	Seq         int // Seq is the 1-based position of Transaction in the account log.
	Time        time.Time
	Transaction Transaction
}

// NewEvent creates the event of tx recorded at position seq of an account log.
func NewEvent(accountID string, seq int, tx Transaction) Event {
	return Event{ID: uuid.NewString(), AccountID: accountID, Seq: seq, Time: tx.When(), Transaction: tx}
}

// MarshalJSON implements the json.Marshaler interface for Event.
func (e Event) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("event_id", e.ID)
	w.Append("account_id", e.AccountID)
	w.Append("seq", e.Seq)
	w.Append("transaction", e.Transaction)
	return w.MarshalJSON()
}

// Publisher delivers events to other systems.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
