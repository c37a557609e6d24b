// Package journal publishes transaction lifecycle events for downstream consumers.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types.
const (
	TypeSubmitted = "tx_submitted"
	TypeConfirmed = "tx_confirmed"
	TypeFailed    = "tx_failed"
)

// Event 交易事件
// Topic: console_events_tx
type Event struct {
	Type        string    `json:"type"`
	TxHash      string    `json:"tx_hash,omitempty"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Method      string    `json:"method,omitempty"`
	ChainID     string    `json:"chain_id,omitempty"`
	GasLimit    string    `json:"gas_limit,omitempty"`
	BlockNumber uint64    `json:"block_number,omitempty"`
	Succeeded   *bool     `json:"succeeded,omitempty"`
	Message     string    `json:"message,omitempty"`
	At          time.Time `json:"at"`
}

// Journal serialises events onto one topic.
type Journal struct {
	producer Producer
	topic    string
	now      func() time.Time
}

func New(producer Producer, topic string) *Journal {
	return &Journal{producer: producer, topic: topic, now: time.Now}
}

// Record publishes ev, stamping At when unset.
func (j *Journal) Record(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = j.now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	return j.producer.Publish(ctx, j.topic, ev.TxHash, payload)
}

// Close closes the underlying producer.
func (j *Journal) Close() error {
	return j.producer.Close()
}
