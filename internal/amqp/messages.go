package amqp

import (
	"encoding/json"
	"time"
)

// EntryRecordedMessage notifies downstream consumers that a ledger entry
// was persisted. Only the ID travels on the wire, consumers fetch the
// full entry from the database.
type EntryRecordedMessage struct {
	EntryID   int64     `json:"entry_id"`
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryRecordedMessage(entryID int64, ownerID, kind string) *EntryRecordedMessage {
	return &EntryRecordedMessage{
		EntryID:   entryID,
		OwnerID:   ownerID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (m *EntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryRecordedMessageFromJSON(data []byte) (*EntryRecordedMessage, error) {
	var msg EntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportGeneratedMessage announces a closed period and the artifact the
// snapshot was exported to.
type ReportGeneratedMessage struct {
	OwnerID   string    `json:"owner_id"`
	Period    string    `json:"period"`
	Artifact  string    `json:"artifact"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReportGeneratedMessage(ownerID, period, artifact string) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		OwnerID:   ownerID,
		Period:    period,
		Artifact:  artifact,
		Timestamp: time.Now(),
	}
}

func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
