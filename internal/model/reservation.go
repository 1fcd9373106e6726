package model

import (
	"fmt"
	"time"
)

// Reservation statuses.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// Transaction statuses.
const (
	PaymentApproved = "APPROVED"
	PaymentDeclined = "DECLINED"
)

// DateLayout is the ISO calendar date format accepted for stay dates.
const DateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date time.Time

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) String() string { return time.Time(d).Format(DateLayout) }

// MarshalJSON renders the date without a time component.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts only YYYY-MM-DD.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s, expected YYYY-MM-DD", s)
	}
	t, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

// ParseDate parses an ISO calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Overlaps reports whether the half-open stays [aIn, aOut) and [bIn, bOut)
// share at least one night.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}

// Nights returns the number of calendar nights between check-in and
// check-out.  Counted from Unix seconds so ranges beyond time.Duration's
// ~292 year span do not saturate.
func Nights(checkIn, checkOut time.Time) int {
	return int((checkOut.Unix() - checkIn.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// Reservation mirrors the `reservations` table.
type Reservation struct {
	ID               uint64    `json:"id"`
	Code             string    `json:"code"`
	RoomID           uint64    `json:"room_id"`
	UserID           uint64    `json:"user_id"`
	CheckIn          Date      `json:"check_in"`
	CheckOut         Date      `json:"check_out"`
	Guests           uint8     `json:"guests"`
	TotalAmountCents uint32    `json:"total_amount_cents"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Transaction mirrors the `transactions` table: the payment attempt
// recorded for a reservation.
type Transaction struct {
	ID                uint64    `json:"id"`
	ReservationID     uint64    `json:"reservation_id"`
	AmountCents       uint32    `json:"amount_cents"`
	BuyOrder          string    `json:"buy_order"`
	GatewayToken      string    `json:"gateway_token"`
	Status            string    `json:"status"`
	AuthorizationCode string    `json:"authorization_code"`
	CreatedAt         time.Time `json:"created_at"`
}
