package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
	EventAccountDeleted     EventType = "account.deleted"
)

// LedgerEvent is a lightweight mutation notice. It carries only ids; a
// consumer fetches the full record from the store if it needs one.
type LedgerEvent struct {
	Type          EventType `json:"type"`
	TransactionID uuid.UUID `json:"transaction_id,omitempty"`
	AccountID     uuid.UUID `json:"account_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEvent(eventType EventType, transactionID, accountID uuid.UUID) *LedgerEvent {
	return &LedgerEvent{
		Type:          eventType,
		TransactionID: transactionID,
		AccountID:     accountID,
		Timestamp:     time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
