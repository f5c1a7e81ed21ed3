package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"agencyio/internal/database"
	"agencyio/internal/domain"
	"agencyio/internal/services"
)

type discardMailer struct{}

func (discardMailer) SendEmail(to, subject, body string) error { return nil }

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db, err := database.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        ":memory:",
		Conn:       sqlDB,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	notifier := services.NewNotifier(discardMailer{}, "admin@agency.io", "http://localhost:8000")
	booking := services.NewBookingService(db, notifier, "IST")

	e := echo.New()
	e.HideBanner = true
	NewConsultationHandler(booking).Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bookingPayload() map[string]any {
	return map[string]any{
		"full_name":      "Test User",
		"email":          "test@example.com",
		"phone":          "+1234567890",
		"company":        "Test Company",
		"project_type":   "web_development",
		"budget":         "10k-25k",
		"timeline":       "1-3_months",
		"preferred_date": time.Now().UTC().AddDate(0, 0, 7).Format(domain.DateLayout),
		"preferred_time": "10:00",
		"timezone":       "IST",
		"message":        "Test consultation request",
	}
}

func decodeConsultation(t *testing.T, rec *httptest.ResponseRecorder) domain.Consultation {
	t.Helper()
	var c domain.Consultation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestBookingLifecycle(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/consultations", bookingPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeConsultation(t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/api/consultations/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test@example.com", decodeConsultation(t, rec).Email)

	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/consultations/%d/confirm", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "Consultation confirmed"}`, rec.Body.String())

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/api/consultations/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusConfirmed, decodeConsultation(t, rec).Status)

	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/consultations/%d/cancel", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// cancelled is terminal, confirming again conflicts
	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/consultations/%d/confirm", created.ID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot change a cancelled consultation")
}

func TestCreateValidationErrorBody(t *testing.T) {
	e := newTestServer(t)

	payload := bookingPayload()
	payload["email"] = "not-an-email"
	payload["phone"] = ""

	rec := doJSON(t, e, http.MethodPost, "/api/consultations", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "phone")
	assert.NotContains(t, body.Errors, "full_name")
}

func TestCreateDuplicateSlotResponse(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/consultations", bookingPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/consultations", bookingPayload())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Errors, "preferred_time")
	assert.Contains(t, body.Errors["preferred_time"],
		"You already have a consultation booked for this time.")
}

func TestCreateMalformedBody(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/consultations", bytes.NewBufferString("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEndpoint(t *testing.T) {
	e := newTestServer(t)

	// empty database still returns an array, not null
	rec := doJSON(t, e, http.MethodGet, "/api/consultations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))

	rec = doJSON(t, e, http.MethodPost, "/api/consultations", bookingPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	second := bookingPayload()
	second["email"] = "other@example.com"
	second["project_type"] = "mobile_app"
	rec = doJSON(t, e, http.MethodPost, "/api/consultations", second)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/consultations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []domain.Consultation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = doJSON(t, e, http.MethodGet, "/api/consultations?project_type=mobile_app", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var filtered []domain.Consultation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "other@example.com", filtered[0].Email)
}

func TestGetNotFoundResponses(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/consultations/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Consultation not found")

	// non-numeric ids are indistinguishable from missing records
	rec = doJSON(t, e, http.MethodGet, "/api/consultations/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/consultations", bookingPayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeConsultation(t, rec)

	payload := bookingPayload()
	payload["message"] = "Revised scope"
	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/api/consultations/%d", created.ID), payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Revised scope", decodeConsultation(t, rec).Message)
}

func TestPatchEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/consultations", bookingPayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeConsultation(t, rec)

	rec = doJSON(t, e, http.MethodPatch, fmt.Sprintf("/api/consultations/%d", created.ID),
		map[string]any{"message": "Revised scope"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeConsultation(t, rec)
	assert.Equal(t, "Revised scope", patched.Message)
	assert.Equal(t, created.Email, patched.Email, "omitted fields are untouched")

	rec = doJSON(t, e, http.MethodPatch, fmt.Sprintf("/api/consultations/%d", created.ID),
		map[string]any{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "email")

	rec = doJSON(t, e, http.MethodPatch, "/api/consultations/999",
		map[string]any{"message": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/consultations", bookingPayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeConsultation(t, rec)

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/api/consultations/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/api/consultations/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkStatusEndpoint(t *testing.T) {
	e := newTestServer(t)

	var ids []uint
	for i := 0; i < 2; i++ {
		payload := bookingPayload()
		payload["preferred_time"] = fmt.Sprintf("1%d:00", i)
		rec := doJSON(t, e, http.MethodPost, "/api/consultations", payload)
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decodeConsultation(t, rec).ID)
	}

	rec := doJSON(t, e, http.MethodPost, "/api/consultations/bulk_status", map[string]any{
		"ids":    append(ids, 9999),
		"status": "confirmed",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var result BulkStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Skipped)

	rec = doJSON(t, e, http.MethodPost, "/api/consultations/bulk_status", map[string]any{
		"ids":    ids,
		"status": "pending",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/consultations/bulk_status", map[string]any{
		"ids":    []uint{},
		"status": "confirmed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
