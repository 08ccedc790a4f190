package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Routing keys published on the dataset exchange.
const (
	RoutingDatasetImported = "dataset.imported"
	RoutingDatasetDeleted  = "dataset.deleted"
	bindingDatasetEvents   = "dataset.*"
)

// DatasetEvent tells dashboards that the stored transactions changed.
// It carries only identifiers; consumers reload the data themselves.
type DatasetEvent struct {
	Kind      string    `json:"kind"`
	BatchID   uuid.UUID `json:"batch_id"`
	Source    string    `json:"source,omitempty"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetImported builds the event sent after an import batch is stored.
func NewDatasetImported(batchID uuid.UUID, source string, rows int) *DatasetEvent {
	return &DatasetEvent{
		Kind:      RoutingDatasetImported,
		BatchID:   batchID,
		Source:    source,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

// NewDatasetDeleted builds the event sent after an import batch is removed.
func NewDatasetDeleted(batchID uuid.UUID) *DatasetEvent {
	return &DatasetEvent{
		Kind:      RoutingDatasetDeleted,
		BatchID:   batchID,
		Timestamp: time.Now(),
	}
}

func (m *DatasetEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DatasetEventFromJSON(data []byte) (*DatasetEvent, error) {
	var msg DatasetEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case RoutingDatasetImported, RoutingDatasetDeleted:
	default:
		return nil, fmt.Errorf("unknown dataset event kind %q", msg.Kind)
	}
	return &msg, nil
}
