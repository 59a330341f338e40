package domain

// LotStatus is the snapshot a lot actor replies with on a status query.
type LotStatus struct {
	LotID            string  `json:"lotId"`
	CurrentOccupancy int     `json:"currentOccupancy"`
	MaxCapacity      int     `json:"maxCapacity"`
	IsFull           bool    `json:"isFull"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

// AvailableSpaces is derived on read, never stored.
func (s LotStatus) AvailableSpaces() int {
	return s.MaxCapacity - s.CurrentOccupancy
}

// LotRegistration confirms a register request. For an already known lot
// it carries the original capacity, not the one submitted.
type LotRegistration struct {
	LotID       string `json:"lotId"`
	MaxCapacity int    `json:"maxCapacity"`
}

type RegisterLotRequest struct {
	LotID       string  `json:"lotId" binding:"required"`
	MaxCapacity int     `json:"maxCapacity" binding:"required"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

type RegisterLotResponse struct {
	LotID       string `json:"lotId"`
	MaxCapacity int    `json:"maxCapacity"`
	Status      string `json:"status"`
}

type DeregisterLotResponse struct {
	LotID  string `json:"lotId"`
	Status string `json:"status"`
}

// OccupancyReport is the periodic edge sensor report. The edge is the
// source of truth; the cloud mirrors whatever it sends.
type OccupancyReport struct {
	LotID            string `json:"lotId" binding:"required"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	Timestamp        int64  `json:"timestamp"`
}

type OccupancyAccepted struct {
	Status           string `json:"status"`
	LotID            string `json:"lotId"`
	CurrentOccupancy int    `json:"currentOccupancy"`
}

type LotStatusResponse struct {
	LotID            string  `json:"lotId"`
	CurrentOccupancy int     `json:"currentOccupancy"`
	MaxCapacity      int     `json:"maxCapacity"`
	AvailableSpaces  int     `json:"availableSpaces"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

// OccupancyNotification is pushed to dashboard WebSocket clients after
// every accepted occupancy update.
type OccupancyNotification struct {
	LotID            string `json:"lotId"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	MaxCapacity      int    `json:"maxCapacity"`
	AvailableSpaces  int    `json:"availableSpaces"`
	Timestamp        int64  `json:"timestamp"`
}
