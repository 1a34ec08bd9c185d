package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event operations
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// EntryEvent announces that a ledger entry changed. It carries only the id;
// consumers read the current state from the store.
type EntryEvent struct {
	Op        string    `json:"op"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryEvent(op string, id int64) *EntryEvent {
	return &EntryEvent{
		Op:        op,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (m *EntryEvent) Validate() error {
	switch m.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return fmt.Errorf("unknown event op %q", m.Op)
	}
	if m.ID <= 0 {
		return fmt.Errorf("invalid entry id %d", m.ID)
	}
	return nil
}

func (m *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventFromJSON decodes and validates a message body.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var msg EntryEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
