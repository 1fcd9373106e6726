// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher/consumer that move them.
package queue

// ReservationConfirmedQueue is the durable queue confirmed bookings are
// published to.
const ReservationConfirmedQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published once a reservation and its payment
// have been committed.  It carries enough detail for downstream consumers
// to log or notify without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID    uint64 `json:"reservation_id"`
	Code             string `json:"code"`
	UserID           uint64 `json:"user_id"`
	RoomID           uint64 `json:"room_id"`
	RoomNumber       string `json:"room_number"`
	RoomType         string `json:"room_type"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	Nights           int    `json:"nights"`
	TotalAmountCents uint32 `json:"total_amount_cents"`
	TransactionID    uint64 `json:"transaction_id"`
	ConfirmedAt      string `json:"confirmed_at"`
}
