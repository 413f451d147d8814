package events

import (
	"encoding/json"
	"time"
)

// CatchUpMessage announces a completed automation catch-up pass. It is a
// lightweight notification; consumers that need detail read the snapshot
// themselves.
type CatchUpMessage struct {
	AsOf                string    `json:"as_of"`
	RulesAdvanced       int       `json:"rules_advanced"`
	TransactionsCreated int       `json:"transactions_created"`
	Timestamp           time.Time `json:"timestamp"`
}

// NewCatchUpMessage creates a notification for one engine pass.
func NewCatchUpMessage(asOf string, rulesAdvanced, transactionsCreated int) *CatchUpMessage {
	return &CatchUpMessage{
		AsOf:                asOf,
		RulesAdvanced:       rulesAdvanced,
		TransactionsCreated: transactionsCreated,
		Timestamp:           time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *CatchUpMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CatchUpMessageFromJSON parses a message from JSON bytes.
func CatchUpMessageFromJSON(data []byte) (*CatchUpMessage, error) {
	var msg CatchUpMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
