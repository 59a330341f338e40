package domain

// NearbyLot is one entry of a ranked nearby-lots reply, ascending by
// DistanceMeters.
type NearbyLot struct {
	LotID            string  `json:"lotId"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	MaxCapacity      int     `json:"maxCapacity"`
	CurrentOccupancy int     `json:"currentOccupancy"`
	AvailableSpaces  int     `json:"availableSpaces"`
	DistanceMeters   float64 `json:"distanceMeters"`
}

type NearbyLotsResponse struct {
	Lots []NearbyLot `json:"lots"`
}
