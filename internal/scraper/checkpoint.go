package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventStatus is the state of one event in a checkpoint file.
type EventStatus string

const (
	EventStatusDone  EventStatus = "done"
	EventStatusError EventStatus = "error"
)

// CheckpointEntry records one event's last outcome.
type CheckpointEntry struct {
	Status    EventStatus `json:"status"`
	Matches   int         `json:"matches"`
	Timestamp time.Time   `json:"timestamp"`
	Error     string      `json:"error,omitempty"`
}

// Checkpoint is the durable, per-adapter progress record. Reruns consult
// it to skip already-completed events.
type Checkpoint struct {
	mu      sync.Mutex
	path    string
	Entries map[string]CheckpointEntry `json:"entries"`
}

// LoadCheckpoint reads (or initializes) the checkpoint file for an adapter.
func LoadCheckpoint(dir, adapterID string) (*Checkpoint, error) {
	path := filepath.Join(dir, fmt.Sprintf(".%s_checkpoint.json", adapterID))

	cp := &Checkpoint{path: path, Entries: make(map[string]CheckpointEntry)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cp, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cp); err != nil {
		return nil, err
	}
	if cp.Entries == nil {
		cp.Entries = make(map[string]CheckpointEntry)
	}
	return cp, nil
}

// IsDone reports whether an event already completed successfully.
func (c *Checkpoint) IsDone(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.Entries[eventID]
	return ok && e.Status == EventStatusDone
}

// Record stores an event's outcome and flushes the file.
func (c *Checkpoint) Record(eventID string, entry CheckpointEntry) error {
	c.mu.Lock()
	c.Entries[eventID] = entry
	c.mu.Unlock()
	return c.flush()
}

func (c *Checkpoint) flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
