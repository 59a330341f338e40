package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dominikschweigl/ticketless-park-system/internal/actor"
	"github.com/dominikschweigl/ticketless-park-system/internal/api/handler"
	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, []byte) error { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	supervisor := actor.NewLotSupervisor(5*time.Second, nil)
	payments := actor.NewPaymentActor(200, 5*time.Second)
	bookings := actor.NewBookingActor(nopPublisher{}, 5*time.Second)
	routing := actor.NewRoutingActor(supervisor, 5*time.Second)
	t.Cleanup(func() {
		routing.Stop()
		bookings.Stop()
		payments.Stop()
		supervisor.Stop()
	})

	return SetupRouter(supervisor, payments, bookings, routing, nil, handler.NewWebSocketManager())
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterStatusRoundtrip(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/parking-lots",
		`{"lotId":"lot-01","maxCapacity":50,"lat":48.1,"lng":11.5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	var registered domain.RegisterLotResponse
	if err := json.Unmarshal(w.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if registered.Status != "registered" || registered.MaxCapacity != 50 {
		t.Fatalf("register response = %+v", registered)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/occupancy",
		`{"lotId":"lot-01","currentOccupancy":18,"timestamp":1000}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("occupancy status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/parking-lots/lot-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, body %s", w.Code, w.Body.String())
	}
	var status domain.LotStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.CurrentOccupancy != 18 || status.MaxCapacity != 50 || status.AvailableSpaces != 32 {
		t.Fatalf("status = %+v", status)
	}
}

func TestRegisterRejectsNonPositiveCapacity(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/parking-lots",
		`{"lotId":"lot-01","maxCapacity":-3}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUnknownLotStatusIsSentinelNotError(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/parking-lots/ghost", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with sentinel body", w.Code)
	}
	var status domain.LotStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.MaxCapacity != 0 || status.CurrentOccupancy != 0 {
		t.Fatalf("sentinel = %+v, want zeros", status)
	}
}

func TestDeregisterEndpoint(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/parking-lots", `{"lotId":"lot-01","maxCapacity":20}`)

	w := doJSON(t, router, http.MethodDelete, "/api/v1/parking-lots/lot-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("deregister status = %d", w.Code)
	}
	var resp domain.DeregisterLotResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "deregistered" || resp.LotID != "lot-01" {
		t.Fatalf("deregister response = %+v", resp)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/parking-lots", "")
	var listing map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing) != 0 {
		t.Fatalf("listing after deregister = %+v", listing)
	}
}

func TestPaymentEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/payments/entry",
		`{"licensePlate":"M-AB123","entryTimestamp":1}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("entry status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/payments/pay", `{"licensePlate":"M-AB123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("pay status = %d, body %s", w.Code, w.Body.String())
	}
	var paid domain.PaymentStatus
	if err := json.Unmarshal(w.Body.Bytes(), &paid); err != nil {
		t.Fatalf("decode pay: %v", err)
	}
	if !paid.Paid || paid.EntryTimestamp != 1 {
		t.Fatalf("pay response = %+v", paid)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/payments/M-AB123", "")
	if w.Code != http.StatusOK {
		t.Fatalf("exit status = %d", w.Code)
	}

	// Unknown plate after exit: well-formed zero response.
	w = doJSON(t, router, http.MethodGet, "/api/v1/payments/M-AB123", "")
	if w.Code != http.StatusOK {
		t.Fatalf("check status = %d", w.Code)
	}
	var checked domain.PaymentStatus
	if err := json.Unmarshal(w.Body.Bytes(), &checked); err != nil {
		t.Fatalf("decode check: %v", err)
	}
	if checked.Paid || checked.PriceCents != 0 {
		t.Fatalf("check after exit = %+v, want zeros", checked)
	}
}

func TestBookingEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/bookings",
		`{"lotId":"lot-01","licensePlate":"M-AB123"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("book status = %d", w.Code)
	}
	var confirmation domain.BookingConfirmation
	if err := json.Unmarshal(w.Body.Bytes(), &confirmation); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if confirmation.Status != "queued" {
		t.Fatalf("book confirmation = %+v", confirmation)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/bookings/cancel",
		`{"lotId":"lot-01","licensePlate":"M-AB123"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("cancel status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &confirmation); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if confirmation.Status != "canceled" {
		t.Fatalf("cancel confirmation = %+v", confirmation)
	}
}

func TestNearbyEndpoint(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/parking-lots",
		`{"lotId":"near","maxCapacity":10,"lat":48.0005,"lng":11.0}`)
	doJSON(t, router, http.MethodPost, "/api/v1/parking-lots",
		`{"lotId":"far","maxCapacity":10,"lat":48.01,"lng":11.0}`)

	w := doJSON(t, router, http.MethodGet, "/api/v1/nearby?lat=48.0&lng=11.0&limit=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("nearby status = %d, body %s", w.Code, w.Body.String())
	}
	var resp domain.NearbyLotsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Lots) != 1 || resp.Lots[0].LotID != "near" {
		t.Fatalf("nearby = %+v, want only the near lot", resp.Lots)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/nearby?lat=abc&lng=11.0", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid lat status = %d, want 400", w.Code)
	}
}
