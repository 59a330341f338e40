package domain

import "encoding/json"

// Message types carried on the edge SQS queue.
const (
	EdgeMessageOccupancy = "occupancy"
	EdgeMessageRegister  = "register"
)

// GenericEdgeEvent is the envelope every edge queue message shares.
// RawPayload keeps the original body so the consumer can decode the
// type-specific shape after dispatching on MessageType.
type GenericEdgeEvent struct {
	MessageType  string          `json:"messageType"`
	EdgeServerID string          `json:"edgeServerId"`
	RawPayload   json.RawMessage `json:"-"`
}

type EdgeOccupancyEvent struct {
	LotID            string `json:"lotId"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	Timestamp        int64  `json:"timestamp"`
}

type EdgeRegisterEvent struct {
	LotID       string  `json:"lotId"`
	MaxCapacity int     `json:"maxCapacity"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}
