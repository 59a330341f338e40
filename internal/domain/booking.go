package domain

const (
	BookingActionBook   = "book"
	BookingActionCancel = "cancel"
)

type BookingRequest struct {
	LotID        string `json:"lotId" binding:"required"`
	LicensePlate string `json:"licensePlate" binding:"required"`
}

type BookingConfirmation struct {
	LotID        string `json:"lotId"`
	LicensePlate string `json:"licensePlate"`
	Status       string `json:"status"`
}

// BookingEvent is the payload published on the per-lot booking topic
// for edge consumption. EventID exists for edge-side dedup only; the
// cloud does not track delivery.
type BookingEvent struct {
	Action       string `json:"action"`
	LicensePlate string `json:"licensePlate"`
	EventID      string `json:"eventId"`
}
