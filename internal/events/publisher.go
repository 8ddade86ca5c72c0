package events

import "time"

const TopicTransferCommitted = "transfer_committed"

// Publisher delivers committed-transfer events to interested consumers
// (notification bots, audit pipelines). Publishing is best effort and never
// part of the commit's atomic unit.
type Publisher interface {
	Publish(topic string, event any) error
}

// TransferCommitted is emitted once per successfully committed transfer.
type TransferCommitted struct {
	TransferID int64     `json:"transfer_id"`
	Sender     uint64    `json:"sender"`
	Receiver   uint64    `json:"receiver"`
	Amount     int64     `json:"amount"`
	Reason     *string   `json:"reason"`
	Registered time.Time `json:"registered"`
}

// Nop discards all events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }
