package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// memDB is an in-memory store shared by the fakes.  fakeTx snapshots it on
// entry and restores the snapshot when fn fails, mimicking a rollback.
type memDB struct {
	mu           sync.Mutex
	rooms        map[uint64]model.AvailableRoom
	reservations map[uint64]model.Reservation
	transactions map[uint64]model.Transaction
	users        map[uint64]model.User
	roles        map[string]model.Role
	refresh      map[string]uint64
	nextID       uint64
}

func newMemDB() *memDB {
	return &memDB{
		rooms:        map[uint64]model.AvailableRoom{},
		reservations: map[uint64]model.Reservation{},
		transactions: map[uint64]model.Transaction{},
		users:        map[uint64]model.User{},
		roles:        map[string]model.Role{},
		refresh:      map[string]uint64{},
	}
}

func (m *memDB) id() uint64 { m.nextID++; return m.nextID }

type snapshot struct {
	reservations map[uint64]model.Reservation
	transactions map[uint64]model.Transaction
	users        map[uint64]model.User
	roles        map[string]model.Role
	nextID       uint64
}

func (m *memDB) snap() snapshot {
	s := snapshot{
		reservations: map[uint64]model.Reservation{},
		transactions: map[uint64]model.Transaction{},
		users:        map[uint64]model.User{},
		roles:        map[string]model.Role{},
		nextID:       m.nextID,
	}
	for k, v := range m.reservations {
		s.reservations[k] = v
	}
	for k, v := range m.transactions {
		s.transactions[k] = v
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.roles {
		s.roles[k] = v
	}
	return s
}

func (m *memDB) restore(s snapshot) {
	m.reservations, m.transactions, m.users, m.roles, m.nextID = s.reservations, s.transactions, s.users, s.roles, s.nextID
}

type fakeTx struct {
	db        *memDB
	commits   int
	rollbacks int
}

// WithTx serialises transactions on the store mutex, which stands in for the
// room row lock.
func (f *fakeTx) WithTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s := f.db.snap()
	if err := fn(nil); err != nil {
		f.db.restore(s)
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type fakeRooms struct{ db *memDB }

func (f fakeRooms) ListByStatus(_ context.Context, status string) ([]model.AvailableRoom, error) {
	var out []model.AvailableRoom
	for _, r := range f.db.rooms {
		if r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeRooms) ConflictingRoomIDs(_ context.Context, in, out time.Time) ([]uint64, error) {
	seen := map[uint64]bool{}
	var ids []uint64
	for _, r := range f.db.reservations {
		if r.Status == model.ReservationCancelled || seen[r.RoomID] {
			continue
		}
		if model.Overlaps(r.CheckIn.Time(), r.CheckOut.Time(), in, out) {
			seen[r.RoomID] = true
			ids = append(ids, r.RoomID)
		}
	}
	return ids, nil
}

func (f fakeRooms) LockForBookingTx(_ context.Context, _ *sql.Tx, id uint64) (model.AvailableRoom, error) {
	r, ok := f.db.rooms[id]
	if !ok {
		return model.AvailableRoom{}, repository.ErrRoomNotFound
	}
	return r, nil
}

type fakeReservations struct{ db *memDB }

func (f fakeReservations) HasOverlapTx(_ context.Context, _ *sql.Tx, roomID uint64, in, out time.Time) (bool, error) {
	for _, r := range f.db.reservations {
		if r.RoomID == roomID && r.Status != model.ReservationCancelled &&
			model.Overlaps(r.CheckIn.Time(), r.CheckOut.Time(), in, out) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeReservations) CreateTx(_ context.Context, _ *sql.Tx, res *model.Reservation) error {
	for _, r := range f.db.reservations {
		if r.Code == res.Code {
			return repository.ErrReservationCodeUsed
		}
	}
	res.ID = f.db.id()
	f.db.reservations[res.ID] = *res
	return nil
}

func (f fakeReservations) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, status string) error {
	r, ok := f.db.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	r.Status = status
	f.db.reservations[id] = r
	return nil
}

func (f fakeReservations) GetForUpdateTx(ctx context.Context, _ *sql.Tx, id uint64) (model.Reservation, error) {
	r, ok := f.db.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrReservationNotFound
	}
	return r, nil
}

func (f fakeReservations) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	return f.GetForUpdateTx(ctx, nil, id)
}

func (f fakeReservations) ListAll(context.Context) ([]model.Reservation, error) {
	return f.filter(func(model.Reservation) bool { return true }), nil
}

func (f fakeReservations) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	return f.filter(func(r model.Reservation) bool { return r.UserID == userID }), nil
}

func (f fakeReservations) filter(keep func(model.Reservation) bool) []model.Reservation {
	out := []model.Reservation{}
	for _, r := range f.db.reservations {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeTransactions struct{ db *memDB }

func (f fakeTransactions) CreateTx(_ context.Context, _ *sql.Tx, t *model.Transaction) error {
	t.ID = f.db.id()
	f.db.transactions[t.ID] = *t
	return nil
}

func (f fakeTransactions) GetByReservationID(_ context.Context, id uint64) (model.Transaction, error) {
	for _, t := range f.db.transactions {
		if t.ReservationID == id {
			return t, nil
		}
	}
	return model.Transaction{}, repository.ErrTransactionNotFound
}

func (f fakeTransactions) forReservation(id uint64) []model.Transaction {
	var out []model.Transaction
	for _, t := range f.db.transactions {
		if t.ReservationID == id {
			out = append(out, t)
		}
	}
	return out
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Authorize(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(PaymentResult), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type bookingFixture struct {
	db    *memDB
	tx    *fakeTx
	trx   fakeTransactions
	svc   *BookingService
	avail *AvailabilityService
}

func newBookingFixture(t *testing.T, gw PaymentGateway, events EventPublisher) *bookingFixture {
	t.Helper()
	db := newMemDB()
	db.rooms[1] = model.AvailableRoom{ID: 1, Number: "101", Status: model.RoomFree, RoomTypeID: 1, RoomTypeName: "Single", Capacity: 1, PricePerNightCents: 5000}
	db.rooms[7] = model.AvailableRoom{ID: 7, Number: "107", Status: model.RoomFree, RoomTypeID: 2, RoomTypeName: "Double", Capacity: 2, PricePerNightCents: 10000}
	db.rooms[9] = model.AvailableRoom{ID: 9, Number: "109", Status: model.RoomMaintenance, RoomTypeID: 2, RoomTypeName: "Double", Capacity: 2, PricePerNightCents: 10000}
	db.nextID = 100

	tx := &fakeTx{db: db}
	trx := fakeTransactions{db: db}
	if gw == nil {
		gw = SimulatedGateway{}
	}
	svc := NewBookingService(tx, fakeRooms{db}, fakeReservations{db}, trx, gw, events, zap.NewNop())
	return &bookingFixture{db: db, tx: tx, trx: trx, svc: svc, avail: NewAvailabilityService(fakeRooms{db}, zap.NewNop())}
}
