package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage announces that the persisted transaction list changed.
// It carries no transaction data; consumers reload the ledger from storage.
type LedgerChangedMessage struct {
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(op, id string, count int) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Op:        op,
		ID:        id,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message body.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
