package model

import "time"

// Room statuses.  The status is the physical state of the room; date-range
// availability is derived from reservations.
const (
	RoomFree        = "FREE"
	RoomOccupied    = "OCCUPIED"
	RoomMaintenance = "MAINTENANCE"
)

// RoomType is a row in `room_types`.  Reference data shared by rooms.
type RoomType struct {
	ID                 uint64    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Capacity           uint8     `json:"capacity"`
	PricePerNightCents uint32    `json:"price_per_night_cents"`
	CreatedAt          time.Time `json:"-"`
}

// Service is a row in `services` (breakfast, spa, parking...).
type Service struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint32 `json:"price_cents"`
}

// AvailableRoom is a `rooms` row joined with its room type, as returned by
// the availability lookup and the booking lock.
type AvailableRoom struct {
	ID                 uint64 `json:"id"`
	Number             string `json:"number"`
	Floor              int16  `json:"floor"`
	Status             string `json:"status"`
	RoomTypeID         uint64 `json:"room_type_id"`
	RoomTypeName       string `json:"room_type"`
	Capacity           uint8  `json:"capacity"`
	PricePerNightCents uint32 `json:"price_per_night_cents"`
}
