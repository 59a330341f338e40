package domain

// PaymentStatus describes one plate's open session at a point in time.
// For a plate with no open session all fields except the plate and
// CurrentTimestamp are zero.
type PaymentStatus struct {
	LicensePlate     string `json:"licensePlate"`
	Paid             bool   `json:"paid"`
	EntryTimestamp   int64  `json:"entryTimestamp"`
	CurrentTimestamp int64  `json:"currentTimestamp"`
	PriceCents       int    `json:"priceCents"`
}

type CarEnteredRequest struct {
	LicensePlate   string `json:"licensePlate" binding:"required"`
	EntryTimestamp int64  `json:"entryTimestamp"`
}

type PayRequest struct {
	LicensePlate string `json:"licensePlate" binding:"required"`
}

type ExitAck struct {
	LicensePlate string `json:"licensePlate"`
	Status       string `json:"status"`
}
