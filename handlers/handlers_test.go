package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	providerRepo "slotbook/database/repository/provider"
	reservationRepo "slotbook/database/repository/reservation"
	"slotbook/services/availability"
	"slotbook/services/booking"
	"slotbook/services/provider"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

var now = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	clock  time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	providers := providerRepo.NewMemoryProviderRepo()
	reservations := reservationRepo.NewMemoryReservationRepo()

	providerSvc, err := provider.NewDefaultProviderService(providers, 15*time.Minute, nil, nil)
	if err != nil {
		t.Fatalf("NewDefaultProviderService: %v", err)
	}
	ledger := &booking.Ledger{Providers: providers, Reservations: reservations, Rules: booking.DefaultRules}
	engine := &availability.Engine{
		Providers:         providers,
		Reservations:      reservations,
		AppointmentLength: 15 * time.Minute,
		MinLeadTime:       24 * time.Hour,
	}

	s := &testServer{router: gin.New(), clock: now}
	clock := func() time.Time { return s.clock }

	ph := &ProviderHandler{Service: providerSvc, Now: clock}
	ah := &AvailabilityHandler{Service: engine, Now: clock}
	bh := &BookingHandler{Service: ledger, Now: clock}

	s.router.POST("/providers", ph.SubmitAvailabilityHandler)
	s.router.GET("/providers/:id", ph.GetProviderHandler)
	s.router.GET("/slots", ah.ListSlotsHandler)
	s.router.POST("/reservations", bh.ReserveHandler)
	s.router.POST("/reservations/confirm", bh.ConfirmHandler)
	s.router.GET("/reservations/:id", bh.GetReservationHandler)
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func (s *testServer) seedProvider(t *testing.T) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/providers", gin.H{
		"provider_id": "p1",
		"schedule": []gin.H{
			{"start": "2030-01-02T09:00:00+00:00", "end": "2030-01-02T09:30:00+00:00"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("seed provider: %d %s", w.Code, w.Body.String())
	}
}

type reservationBody struct {
	Reservation struct {
		ID         int64  `json:"reservation_id"`
		ClientID   string `json:"client_id"`
		Status     string `json:"status"`
		SlotStart  string `json:"slot_start_time"`
		ExpiryTime string `json:"expiry_time"`
	} `json:"reservation"`
}

type slotPage struct {
	Items []struct {
		ProviderID string `json:"provider_id"`
		Start      string `json:"start"`
	} `json:"items"`
	Total int `json:"total"`
}

func TestSubmitAvailabilityHandler(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing provider id", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/providers", gin.H{"schedule": []gin.H{}})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if body := decode[utils.ErrorResponse](t, w); body.Error != "invalid_request" {
			t.Fatalf("expected invalid_request, got %+v", body)
		}
	})

	t.Run("misaligned range", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/providers", gin.H{
			"provider_id": "p1",
			"schedule":    []gin.H{{"start": "2030-01-02T09:05:00Z", "end": "2030-01-02T10:00:00Z"}},
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if body := decode[utils.ErrorResponse](t, w); body.Error != "invalid_schedule" {
			t.Fatalf("expected invalid_schedule, got %+v", body)
		}
	})

	t.Run("accepted then overlap", func(t *testing.T) {
		s.seedProvider(t)
		w := s.do(t, http.MethodPost, "/providers", gin.H{
			"provider_id": "p1",
			"schedule":    []gin.H{{"start": "2030-01-02T09:15:00Z", "end": "2030-01-02T10:00:00Z"}},
		})
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
		if body := decode[utils.ErrorResponse](t, w); body.Error != "schedule_overlap" {
			t.Fatalf("expected schedule_overlap, got %+v", body)
		}
	})

	t.Run("get provider", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/providers/p1", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w := s.do(t, http.MethodGet, "/providers/nobody", nil); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestReserveAndConfirmHandlers(t *testing.T) {
	s := newTestServer(t)
	s.seedProvider(t)

	w := s.do(t, http.MethodPost, "/reservations", gin.H{
		"client_id":       "c1",
		"provider_id":     "p1",
		"slot_start_time": "2030-01-02T09:15:00+00:00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("reserve: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	held := decode[reservationBody](t, w)
	if held.Reservation.ID != 1 || held.Reservation.Status != "held" {
		t.Fatalf("unexpected reservation %+v", held.Reservation)
	}
	if held.Reservation.ExpiryTime != "2030-01-01T08:30:00Z" {
		t.Fatalf("expected expiry 30 minutes after now, got %s", held.Reservation.ExpiryTime)
	}

	w = s.do(t, http.MethodPost, "/reservations", gin.H{
		"client_id":       "c2",
		"provider_id":     "p1",
		"slot_start_time": "2030-01-02T09:15:00Z",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("second reserve: expected 409, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/reservations/confirm", gin.H{"client_id": "c2", "reservation_id": 1})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign confirm: expected 403, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/reservations/confirm", gin.H{"client_id": "c1", "reservation_id": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[reservationBody](t, w); got.Reservation.Status != "confirmed" || got.Reservation.ExpiryTime != "" {
		t.Fatalf("unexpected confirmed reservation %+v", got.Reservation)
	}

	w = s.do(t, http.MethodGet, "/reservations/1?client_id=c1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/reservations/1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("get without client: expected 400, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/reservations/abc?client_id=c1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("get with bad id: expected 400, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/reservations/42?client_id=c1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get unknown: expected 404, got %d", w.Code)
	}
}

func TestReserveHandlerErrors(t *testing.T) {
	s := newTestServer(t)
	s.seedProvider(t)

	tests := []struct {
		name     string
		body     gin.H
		wantCode int
		wantErr  string
	}{
		{"missing field", gin.H{"client_id": "c1", "provider_id": "p1"}, http.StatusBadRequest, "invalid_request"},
		{"unknown provider", gin.H{"client_id": "c1", "provider_id": "nobody", "slot_start_time": "2030-01-02T09:00:00Z"}, http.StatusNotFound, "provider_not_found"},
		{"bad timestamp", gin.H{"client_id": "c1", "provider_id": "p1", "slot_start_time": "tomorrow"}, http.StatusBadRequest, "invalid_slot_start"},
		{"too soon", gin.H{"client_id": "c1", "provider_id": "p1", "slot_start_time": "2030-01-01T09:00:00Z"}, http.StatusBadRequest, "lead_time_violation"},
		{"outside schedule", gin.H{"client_id": "c1", "provider_id": "p1", "slot_start_time": "2030-01-02T11:00:00Z"}, http.StatusBadRequest, "invalid_slot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/reservations", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if body := decode[utils.ErrorResponse](t, w); body.Error != tt.wantErr {
				t.Fatalf("expected %s, got %+v", tt.wantErr, body)
			}
		})
	}
}

func TestConfirmAfterExpiry(t *testing.T) {
	s := newTestServer(t)
	s.seedProvider(t)

	if w := s.do(t, http.MethodPost, "/reservations", gin.H{
		"client_id": "c1", "provider_id": "p1", "slot_start_time": "2030-01-02T09:00:00Z",
	}); w.Code != http.StatusCreated {
		t.Fatalf("reserve: %d", w.Code)
	}

	s.clock = now.Add(30 * time.Minute)
	w := s.do(t, http.MethodPost, "/reservations/confirm", gin.H{"client_id": "c1", "reservation_id": 1})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if body := decode[utils.ErrorResponse](t, w); body.Error != "hold_expired" {
		t.Fatalf("expected hold_expired, got %+v", body)
	}
}

func TestListSlotsHandler(t *testing.T) {
	s := newTestServer(t)
	s.seedProvider(t)

	w := s.do(t, http.MethodGet, "/slots", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if page := decode[slotPage](t, w); page.Total != 2 {
		t.Fatalf("expected 2 slots, got %+v", page)
	}

	if w := s.do(t, http.MethodPost, "/reservations", gin.H{
		"client_id": "c1", "provider_id": "p1", "slot_start_time": "2030-01-02T09:00:00Z",
	}); w.Code != http.StatusCreated {
		t.Fatalf("reserve: %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/slots?provider_id=p1&page_size=1", nil)
	page := decode[slotPage](t, w)
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Start != "2030-01-02T09:15:00Z" {
		t.Fatalf("expected only the 09:15 slot, got %+v", page)
	}

	w = s.do(t, http.MethodGet, "/slots?from=2030-01-02T09:20:00Z", nil)
	if page := decode[slotPage](t, w); page.Total != 0 {
		t.Fatalf("expected no slots after 09:20, got %+v", page)
	}

	w = s.do(t, http.MethodGet, "/slots?page=100000000000000001", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("huge page: expected 200, got %d", w.Code)
	}
	if page := decode[slotPage](t, w); page.Total != 1 || len(page.Items) != 0 {
		t.Fatalf("expected an empty page past the end, got %+v", page)
	}

	bad := []string{
		"/slots?from=yesterday",
		"/slots?page=-1",
		"/slots?from=2030-01-02T10:00:00Z&to=2030-01-02T09:00:00Z",
	}
	for _, path := range bad {
		if w := s.do(t, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
	if w := s.do(t, http.MethodGet, "/slots?provider_id=nobody", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown provider: expected 404, got %d", w.Code)
	}
}

func TestAuthorizedSubjectMustMatch(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("subject", "c1"); c.Next() })
	bh := &BookingHandler{Service: nil, Now: func() time.Time { return now }}
	r.POST("/reservations", bh.ReserveHandler)

	req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewBufferString(
		`{"client_id":"c2","provider_id":"p1","slot_start_time":"2030-01-02T09:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before reaching the service, got %d", w.Code)
	}
}
