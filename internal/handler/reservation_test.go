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

	"github.com/iliyamo/childcare-booking/internal/model"
	"github.com/iliyamo/childcare-booking/internal/repository"
	"github.com/iliyamo/childcare-booking/internal/service"
	"github.com/iliyamo/childcare-booking/internal/validation"
	"github.com/labstack/echo/v4"
)

var handlerNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// mockBookings is a test double for the booking service.
type mockBookings struct {
	provisioned  *model.Reservation
	provisionErr error
	provisions   int
	detail       *repository.ReservationDetail
	findErr      error
}

func (m *mockBookings) Provision(ctx context.Context, b *validation.Booking) (*model.Reservation, error) {
	m.provisions++
	if m.provisionErr != nil {
		return nil, m.provisionErr
	}
	return m.provisioned, nil
}

func (m *mockBookings) FindByReference(ctx context.Context, referenceNumber string) (*repository.ReservationDetail, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.detail, nil
}

func validBody() string {
	draft := validation.Draft{
		CustomerName:  "Alice",
		CustomerPhone: "555-1000",
		Address:       "12 Elm St",
		StartAt:       handlerNow.Add(7 * time.Hour).Format(time.RFC3339),
		Children: []validation.ChildDraft{
			{Name: "Bo", DateOfBirth: handlerNow.AddDate(-8, 0, 0).Format("2006-01-02")},
		},
	}
	b, _ := json.Marshal(draft)
	return string(b)
}

func postReservation(h *ReservationHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h.Create(e.NewContext(req, rec))
	return rec
}

func TestCreateReturnsReference(t *testing.T) {
	bookings := &mockBookings{provisioned: &model.Reservation{
		ID:              42,
		CustomerID:      7,
		ReferenceNumber: "REF_x7Kp2Q",
		Address:         "12 Elm St",
		StartAt:         handlerNow.Add(7 * time.Hour),
		Children:        []model.Child{{Name: "Bo", DateOfBirth: "2017-03-10"}},
		CreatedAt:       handlerNow,
	}}
	h := NewReservationHandler(bookings, func() time.Time { return handlerNow })

	rec := postReservation(h, validBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["reference_number"] != "REF_x7Kp2Q" {
		t.Errorf("reference_number = %v, want REF_x7Kp2Q", body["reference_number"])
	}
	if bookings.provisions != 1 {
		t.Errorf("provisions = %d, want 1", bookings.provisions)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	bookings := &mockBookings{}
	h := NewReservationHandler(bookings, func() time.Time { return handlerNow })

	draft := validation.Draft{
		CustomerName:  "Alice",
		CustomerPhone: "555-1000",
		Address:       "12 Elm St",
		StartAt:       handlerNow.Add(7 * time.Hour).Format(time.RFC3339),
		Children:      []validation.ChildDraft{},
	}
	b, _ := json.Marshal(draft)

	rec := postReservation(h, string(b))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Errors["children"]) == 0 {
		t.Errorf("missing children error in %v", body.Errors)
	}
	// Nothing may be written when validation fails.
	if bookings.provisions != 0 {
		t.Errorf("provisions = %d, want 0", bookings.provisions)
	}
}

func TestCreateMapsReferenceExhaustion(t *testing.T) {
	bookings := &mockBookings{provisionErr: service.ErrReferenceExhausted}
	h := NewReservationHandler(bookings, func() time.Time { return handlerNow })

	rec := postReservation(h, validBody())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

// A transient store failure is a service fault, not a client error:
// the caller may retry the whole submission, so it gets 503 like every
// other provisioning failure.
func TestCreateMapsTransientFailureToServiceUnavailable(t *testing.T) {
	bookings := &mockBookings{provisionErr: errors.New("connection lost")}
	h := NewReservationHandler(bookings, func() time.Time { return handlerNow })

	rec := postReservation(h, validBody())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestShowReturnsReservation(t *testing.T) {
	bookings := &mockBookings{detail: &repository.ReservationDetail{
		ReferenceNumber: "REF_x7Kp2Q",
		CustomerName:    "Alice",
		CustomerPhone:   "555-1000",
		Address:         "12 Elm St",
		StartAt:         handlerNow.Add(7 * time.Hour),
		Children:        []model.Child{{Name: "Bo", DateOfBirth: handlerNow.AddDate(-8, 0, 0).Format("2006-01-02")}},
	}}
	h := NewReservationHandler(bookings, func() time.Time { return handlerNow })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reservations/:referenceNumber")
	c.SetParamNames("referenceNumber")
	c.SetParamValues("REF_x7Kp2Q")

	if err := h.Show(c); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		CustomerName string `json:"customer_name"`
		Children     []struct {
			Name string `json:"name"`
			Age  string `json:"age"`
		} `json:"children"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.CustomerName != "Alice" {
		t.Errorf("customer_name = %q, want Alice", body.CustomerName)
	}
	if len(body.Children) != 1 || body.Children[0].Age != "8 years old" {
		t.Errorf("children = %+v, want one entry aged \"8 years old\"", body.Children)
	}
}

func TestShowNotFound(t *testing.T) {
	bookings := &mockBookings{findErr: repository.ErrReservationNotFound}
	h := NewReservationHandler(bookings, func() time.Time { return handlerNow })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reservations/:referenceNumber")
	c.SetParamNames("referenceNumber")
	c.SetParamValues("REF_unknown")

	if err := h.Show(c); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
