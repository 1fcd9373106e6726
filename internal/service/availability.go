package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// StayRange is a validated half-open [CheckIn, CheckOut) interval of
// calendar dates in UTC.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// MaxStayNights bounds a single stay.
const MaxStayNights = 365

// Nights in the stay.
func (s StayRange) Nights() int { return model.Nights(s.CheckIn, s.CheckOut) }

// ParseStay validates raw check-in/check-out parameters.  Both are
// required, must be YYYY-MM-DD and check_out must fall after check_in by at
// most MaxStayNights.
func ParseStay(checkInRaw, checkOutRaw string) (StayRange, error) {
	checkInRaw, checkOutRaw = strings.TrimSpace(checkInRaw), strings.TrimSpace(checkOutRaw)
	if checkInRaw == "" || checkOutRaw == "" {
		fields := map[string]string{}
		if checkInRaw == "" {
			fields["check_in"] = "check_in and check_out are required (YYYY-MM-DD)"
		}
		if checkOutRaw == "" {
			fields["check_out"] = "check_in and check_out are required (YYYY-MM-DD)"
		}
		return StayRange{}, &ValidationError{Fields: fields}
	}
	in, err := model.ParseDate(checkInRaw)
	if err != nil {
		return StayRange{}, NewValidationError("check_in", fmt.Sprintf("invalid date %q, expected format YYYY-MM-DD", checkInRaw))
	}
	out, err := model.ParseDate(checkOutRaw)
	if err != nil {
		return StayRange{}, NewValidationError("check_out", fmt.Sprintf("invalid date %q, expected format YYYY-MM-DD", checkOutRaw))
	}
	if !out.After(in) {
		return StayRange{}, NewValidationError("check_out", "check_out must be after check_in")
	}
	stay := StayRange{CheckIn: in, CheckOut: out}
	if stay.Nights() > MaxStayNights {
		return StayRange{}, NewValidationError("check_out", fmt.Sprintf("stay may not exceed %d nights", MaxStayNights))
	}
	return stay, nil
}

// AvailabilityService resolves which rooms can be booked for a stay.
type AvailabilityService struct {
	rooms RoomStore
	log   *zap.Logger
}

func NewAvailabilityService(rooms RoomStore, log *zap.Logger) *AvailabilityService {
	return &AvailabilityService{rooms: rooms, log: log}
}

// Available returns the FREE rooms that hold no non-cancelled reservation
// overlapping the requested stay, ordered by room id.
func (s *AvailabilityService) Available(ctx context.Context, checkInRaw, checkOutRaw string) (StayRange, []model.AvailableRoom, error) {
	stay, err := ParseStay(checkInRaw, checkOutRaw)
	if err != nil {
		return StayRange{}, nil, err
	}
	candidates, err := s.rooms.ListByStatus(ctx, model.RoomFree)
	if err != nil {
		return stay, nil, fmt.Errorf("list free rooms: %w", err)
	}
	conflicting, err := s.rooms.ConflictingRoomIDs(ctx, stay.CheckIn, stay.CheckOut)
	if err != nil {
		return stay, nil, fmt.Errorf("conflicting reservations: %w", err)
	}
	out := excludeRooms(candidates, conflicting)

	s.log.Info("availability lookup",
		zap.String("check_in", stay.CheckIn.Format(model.DateLayout)),
		zap.String("check_out", stay.CheckOut.Format(model.DateLayout)),
		zap.Int("candidates", len(candidates)),
		zap.Int("available", len(out)),
	)
	return stay, out, nil
}

func excludeRooms(rooms []model.AvailableRoom, ids []uint64) []model.AvailableRoom {
	blocked := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		blocked[id] = struct{}{}
	}
	out := make([]model.AvailableRoom, 0, len(rooms))
	for _, r := range rooms {
		if _, ok := blocked[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out
}
