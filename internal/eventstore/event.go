package eventstore

import (
	"encoding/json"
	"time"
)

// Event is one journal entry. ID is assigned by the store on append.
type Event struct {
	ID       int64
	RunID    string
	Type     string
	Time     time.Time
	Payload  json.RawMessage
	Metadata map[string]string
}
