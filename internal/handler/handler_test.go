package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Create(ctx context.Context, userID uint64, in service.CreateReservationInput) (service.BookingResult, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(service.BookingResult), args.Error(1)
}

func (m *mockBookings) Get(ctx context.Context, id uint64) (service.ReservationDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(service.ReservationDetail), args.Error(1)
}

func (m *mockBookings) List(ctx context.Context) ([]model.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *mockBookings) ListMine(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *mockBookings) Cancel(ctx context.Context, userID, id uint64) (model.Reservation, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(model.Reservation), args.Error(1)
}

type mockAvailability struct{ mock.Mock }

func (m *mockAvailability) Available(ctx context.Context, in, out string) (service.StayRange, []model.AvailableRoom, error) {
	args := m.Called(ctx, in, out)
	return args.Get(0).(service.StayRange), args.Get(1).([]model.AvailableRoom), args.Error(2)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, username, password string) (service.Session, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockAuth) Refresh(ctx context.Context, raw string) (service.Session, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, raw string) error {
	return m.Called(ctx, raw).Error(0)
}

func (m *mockAuth) LogoutAll(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAuth) Register(ctx context.Context, in service.RegisterInput) (service.RegisterResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(service.RegisterResult), args.Error(1)
}

type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) Profile(ctx context.Context, userID uint64) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockProfiles) UpdateProfile(ctx context.Context, userID uint64, in service.ProfileInput) (model.User, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(model.User), args.Error(1)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func do(e *echo.Echo, method, target, body string, userID uint64, h echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	if userID != 0 {
		c.Set(middleware.CtxUserID, userID)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestGetAvailability_OK(t *testing.T) {
	av := &mockAvailability{}
	in := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	av.On("Available", mock.Anything, "2024-05-01", "2024-05-03").
		Return(service.StayRange{CheckIn: in, CheckOut: in.AddDate(0, 0, 2)}, []model.AvailableRoom{{ID: 3, Number: "103"}}, nil)
	h := NewReservationHandler(av, &mockBookings{}, zap.NewNop())

	rec := do(newEcho(), http.MethodGet, "/api/reservations/availability?check_in=2024-05-01&check_out=2024-05-03", "", 0, h.GetAvailability)
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, float64(3), rooms[0]["id"])
	assert.Equal(t, "103", rooms[0]["number"])
}

func TestGetAvailability_EmptyIsList(t *testing.T) {
	av := &mockAvailability{}
	in := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	av.On("Available", mock.Anything, "2024-05-01", "2024-05-03").
		Return(service.StayRange{CheckIn: in, CheckOut: in.AddDate(0, 0, 2)}, []model.AvailableRoom(nil), nil)
	h := NewReservationHandler(av, &mockBookings{}, zap.NewNop())

	rec := do(newEcho(), http.MethodGet, "/api/reservations/availability?check_in=2024-05-01&check_out=2024-05-03", "", 0, h.GetAvailability)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetAvailability_ValidationError(t *testing.T) {
	av := &mockAvailability{}
	av.On("Available", mock.Anything, "2024-05-03", "2024-05-01").
		Return(service.StayRange{}, []model.AvailableRoom(nil), service.NewValidationError("check_out", "check_out must be after check_in"))
	h := NewReservationHandler(av, &mockBookings{}, zap.NewNop())

	rec := do(newEcho(), http.MethodGet, "/x?check_in=2024-05-03&check_out=2024-05-01", "", 0, h.GetAvailability)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":{"check_out":"check_out must be after check_in"}}`, rec.Body.String())
}

func TestCreateReservation(t *testing.T) {
	bk := &mockBookings{}
	bk.On("Create", mock.Anything, uint64(4), service.CreateReservationInput{RoomID: 7, CheckIn: "2024-05-02", CheckOut: "2024-05-04", Guests: 2}).
		Return(service.BookingResult{
			Reservation: model.Reservation{ID: 11, Code: "RSV-0123456789", RoomID: 7, Status: model.ReservationConfirmed},
			Transaction: model.Transaction{ID: 21},
		}, nil)
	h := NewReservationHandler(&mockAvailability{}, bk, zap.NewNop())

	rec := do(newEcho(), http.MethodPost, "/api/reservations",
		`{"room_id":7,"check_in":"2024-05-02","check_out":"2024-05-04","guests":2}`, 4, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(21), body["transaction_id"])
	assert.NotEmpty(t, body["message"])
	res := body["reservation"].(map[string]any)
	assert.Equal(t, "CONFIRMED", res["status"])
	bk.AssertExpectations(t)
}

func TestCreateReservation_PayloadErrors(t *testing.T) {
	h := NewReservationHandler(&mockAvailability{}, &mockBookings{}, zap.NewNop())

	rec := do(newEcho(), http.MethodPost, "/api/reservations", `{"check_in":"05/02/2024","guests":20}`, 4, h.Create)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, fields, "room_id")
	assert.Contains(t, fields, "check_in")
	assert.Contains(t, fields, "check_out")
	assert.Contains(t, fields, "guests")
}

func TestCreateReservation_RequiresUser(t *testing.T) {
	h := NewReservationHandler(&mockAvailability{}, &mockBookings{}, zap.NewNop())
	rec := do(newEcho(), http.MethodPost, "/api/reservations", `{}`, 0, h.Create)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservation_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrRoomUnavailable, http.StatusConflict},
		{service.ErrRoomNotFree, http.StatusConflict},
		{repository.ErrRoomNotFound, http.StatusNotFound},
		{service.ErrPaymentDeclined, http.StatusPaymentRequired},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			bk := &mockBookings{}
			bk.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(service.BookingResult{}, tc.err)
			h := NewReservationHandler(&mockAvailability{}, bk, zap.NewNop())

			rec := do(newEcho(), http.MethodPost, "/api/reservations",
				`{"room_id":7,"check_in":"2024-05-02","check_out":"2024-05-04"}`, 4, h.Create)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestGetReservation_EmbedsTransaction(t *testing.T) {
	bk := &mockBookings{}
	bk.On("Get", mock.Anything, uint64(11)).Return(service.ReservationDetail{
		Reservation: model.Reservation{ID: 11, Code: "RSV-0123456789"},
		Transaction: &model.Transaction{ID: 21, Status: model.PaymentApproved},
	}, nil)
	h := NewReservationHandler(&mockAvailability{}, bk, zap.NewNop())

	rec := do(newEcho(), http.MethodGet, "/api/reservations/11", "", 0, h.Get, "id", "11")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "RSV-0123456789", body["code"])
	assert.Equal(t, "APPROVED", body["transaction"].(map[string]any)["status"])
}

func TestGetReservation_BadID(t *testing.T) {
	h := NewReservationHandler(&mockAvailability{}, &mockBookings{}, zap.NewNop())
	rec := do(newEcho(), http.MethodGet, "/api/reservations/abc", "", 0, h.Get, "id", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelReservation(t *testing.T) {
	bk := &mockBookings{}
	bk.On("Cancel", mock.Anything, uint64(4), uint64(11)).Return(model.Reservation{ID: 11, Status: model.ReservationCancelled}, nil)
	bk.On("Cancel", mock.Anything, uint64(5), uint64(11)).Return(model.Reservation{}, service.ErrForbidden)
	h := NewReservationHandler(&mockAvailability{}, bk, zap.NewNop())

	rec := do(newEcho(), http.MethodDelete, "/api/reservations/11", "", 4, h.Cancel, "id", "11")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(newEcho(), http.MethodDelete, "/api/reservations/11", "", 5, h.Cancel, "id", "11")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin(t *testing.T) {
	au := &mockAuth{}
	au.On("Login", mock.Anything, "ana", "pw").Return(service.Session{
		Tokens: utils.TokenPair{Access: utils.SignedToken{Token: "a"}, Refresh: utils.SignedToken{Token: "r"}},
		UserID: 3, Rol: "Client",
	}, nil)
	au.On("Login", mock.Anything, "ana", "bad").Return(service.Session{},
		&service.AuthError{Code: service.CodeNoAccount, Message: "No active account found with the given credentials"})
	h := NewAuthHandler(au, zap.NewNop())

	rec := do(newEcho(), http.MethodPost, "/api/auth/login", `{"username":" ana ","password":"pw"}`, 0, h.Login)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"access":"a","refresh":"r","user_id":3,"rol":"Client"}`, rec.Body.String())

	rec = do(newEcho(), http.MethodPost, "/api/auth/login", `{"username":"ana","password":"bad"}`, 0, h.Login)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no_account", decode(t, rec)["code"])
}

func TestRegister(t *testing.T) {
	au := &mockAuth{}
	roleID := uint64(2)
	au.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool { return in.Username == "ana" })).
		Return(service.RegisterResult{
			User:     model.User{ID: 8, Username: "ana", Email: "ana@example.com", RoleID: &roleID, RoleName: "Client"},
			Warnings: nil,
		}, nil)
	h := NewAuthHandler(au, zap.NewNop())

	rec := do(newEcho(), http.MethodPost, "/api/register",
		`{"username":"ana","email":"ana@example.com","password":"longenough"}`, 0, h.Register)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Client", body["rol"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "warnings")
}

func TestRegister_Validation(t *testing.T) {
	h := NewAuthHandler(&mockAuth{}, zap.NewNop())
	rec := do(newEcho(), http.MethodPost, "/api/register",
		`{"username":"bad name!","email":"nope","password":"short"}`, 0, h.Register)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestRegister_PasswordTooLong(t *testing.T) {
	h := NewAuthHandler(&mockAuth{}, zap.NewNop())
	body := `{"username":"ana","password":"` + strings.Repeat("a", 100) + `"}`
	rec := do(newEcho(), http.MethodPost, "/api/register", body, 0, h.Register)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["errors"].(map[string]any)
	assert.Equal(t, "must be at most 72 characters", fields["password"])
}

func TestRegister_PasswordTooLongFromService(t *testing.T) {
	au := &mockAuth{}
	au.On("Register", mock.Anything, mock.Anything).
		Return(service.RegisterResult{}, service.NewValidationError("password", "must be at most 72 bytes"))
	h := NewAuthHandler(au, zap.NewNop())
	body := `{"username":"ana","password":"` + strings.Repeat("é", 40) + `"}`
	rec := do(newEcho(), http.MethodPost, "/api/register", body, 0, h.Register)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["errors"].(map[string]any)
	assert.Equal(t, "must be at most 72 bytes", fields["password"])
}

func TestRegister_RoleMissingReject(t *testing.T) {
	au := &mockAuth{}
	au.On("Register", mock.Anything, mock.Anything).Return(service.RegisterResult{}, service.ErrDefaultRoleMissing)
	h := NewAuthHandler(au, zap.NewNop())

	rec := do(newEcho(), http.MethodPost, "/api/register", `{"username":"ana","password":"longenough"}`, 0, h.Register)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogout(t *testing.T) {
	au := &mockAuth{}
	au.On("Logout", mock.Anything, "r").Return(nil)
	h := NewAuthHandler(au, zap.NewNop())

	rec := do(newEcho(), http.MethodPost, "/api/auth/logout", `{"refresh":"r"}`, 0, h.Logout)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	au.On("LogoutAll", mock.Anything, uint64(3)).Return(nil)
	rec = do(newEcho(), http.MethodPost, "/api/auth/logout-all", "", 3, h.LogoutAll)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	au.AssertExpectations(t)
}

func TestProfileUpdate_IgnoresUsername(t *testing.T) {
	pr := &mockProfiles{}
	phone := "555"
	pr.On("UpdateProfile", mock.Anything, uint64(3), service.ProfileInput{Phone: &phone}).
		Return(model.User{Username: "ana", Phone: "555"}, nil)
	h := NewProfileHandler(pr, zap.NewNop())

	rec := do(newEcho(), http.MethodPatch, "/api/profile", `{"username":"other","phone":"555"}`, 3, h.Update)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana", decode(t, rec)["username"])
	pr.AssertExpectations(t)
}

func TestProfileGet(t *testing.T) {
	pr := &mockProfiles{}
	pr.On("Profile", mock.Anything, uint64(3)).Return(model.User{Username: "ana", Email: "a@x.io"}, nil)
	h := NewProfileHandler(pr, zap.NewNop())

	rec := do(newEcho(), http.MethodGet, "/api/profile", "", 3, h.Get)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"ana","email":"a@x.io","first_name":"","last_name":"","phone":""}`, rec.Body.String())
}

type stubRoomTypes struct{}

func (stubRoomTypes) ListAll(context.Context) ([]model.RoomType, error) {
	return []model.RoomType{{ID: 1, Name: "Single"}}, nil
}

func (stubRoomTypes) GetByID(_ context.Context, id uint64) (model.RoomType, error) {
	return model.RoomType{}, repository.ErrRoomTypeNotFound
}

func TestCatalog(t *testing.T) {
	h := NewCatalogHandler(stubRoomTypes{}, nil, zap.NewNop())

	rec := do(newEcho(), http.MethodGet, "/api/room-types", "", 0, h.ListRoomTypes)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Single")

	rec = do(newEcho(), http.MethodGet, "/api/room-types/9", "", 0, h.GetRoomType, "id", "9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
