package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SensorReading struct {
	Temp      float64 `json:"Temp"`
	HeartRate float64 `json:"HeartRate"`
	AccelX    float64 `json:"AccelX"`
	AccelY    float64 `json:"AccelY"`
	AccelZ    float64 `json:"AccelZ"`
}

// Snapshot is one successful feed fetch as kept by the history store.
type Snapshot struct {
	ID        string          `json:"id"`
	FetchedAt time.Time       `json:"fetched_at"`
	Readings  []SensorReading `json:"readings"`
	Counts    map[Tier]int    `json:"counts"`
}

func NewSnapshot(readings []SensorReading, counts map[Tier]int) *Snapshot {
	return &Snapshot{
		ID:        uuid.New().String(),
		FetchedAt: time.Now().UTC(),
		Readings:  readings,
		Counts:    counts,
	}
}

func (s *Snapshot) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

func SnapshotFromJSON(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
