/*
handlers_test.go - HTTP-level tests for the payroll API

Tests run through the full router (middleware, admin gate, handlers)
against the in-memory record store.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brigada/payroll-engine/api"
	"github.com/brigada/payroll-engine/store/memory"
)

const testAdminSecret = "secreto-de-prueba"

func newTestRouter() http.Handler {
	h := api.NewHandler(memory.New())
	return api.NewRouter(h, api.HashSecret(testAdminSecret))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(api.AdminSecretHeader, testAdminSecret)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decoding response: %v (body: %s)", err, rec.Body.String())
	}
}

// =============================================================================
// PAYROLL COMPUTATION
// =============================================================================

func TestComputePayroll_NightShift_InlineSalary(t *testing.T) {
	// GIVEN: A Monday 22:00-02:00 night shift and salary 1140000 (minute rate 100)
	// WHEN: POST /api/payroll/compute
	// THEN: 240 night premium minutes worth 240 * 100 * 0.35 = 8400

	router := newTestRouter()
	body := api.ComputePayrollRequest{
		MonthlySalary: 1140000,
		Days: []api.DayEntryDTO{
			{Date: "2026-06-01", In1: "22:00", Out1: "02:00"},
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/payroll/compute", body, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp api.ComputePayrollResponse
	decodeBody(t, rec, &resp)

	if resp.TotalMinutes != 240 {
		t.Errorf("expected 240 total minutes, got %d", resp.TotalMinutes)
	}
	if resp.HourlyRate != 6000 {
		t.Errorf("expected hourly rate 6000, got %v", resp.HourlyRate)
	}

	var night *api.CategoryLineDTO
	for i := range resp.Premiums {
		if resp.Premiums[i].Category == "recargo_nocturno" {
			night = &resp.Premiums[i]
		}
	}
	if night == nil {
		t.Fatal("expected a recargo_nocturno line")
	}
	if night.Minutes != 240 || night.Amount != 8400 {
		t.Errorf("expected 240 min / 8400, got %v min / %v", night.Minutes, night.Amount)
	}
	if resp.TotalPay != 8400 {
		t.Errorf("expected total pay 8400, got %v", resp.TotalPay)
	}
	if len(resp.Warnings) == 0 {
		t.Error("expected the midnight rollover warning to surface")
	}
}

func TestComputePayroll_SalaryFromJobTitle(t *testing.T) {
	// GIVEN: The seeded store is empty, so create a title first via the admin API
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/titles",
		api.SaveJobTitleRequest{Name: "BOMBERO", MonthlySalary: 1140000}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating title, got %d: %s", rec.Code, rec.Body.String())
	}

	// WHEN: Computing against the stored title
	body := api.ComputePayrollRequest{
		JobTitle: "BOMBERO",
		Days: []api.DayEntryDTO{
			{Date: "2026-06-01", In1: "22:00", Out1: "02:00"},
		},
	}
	rec = doJSON(t, router, http.MethodPost, "/api/payroll/compute", body, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp api.ComputePayrollResponse
	decodeBody(t, rec, &resp)
	if resp.HourlyRate != 6000 {
		t.Errorf("expected hourly rate from the stored salary, got %v", resp.HourlyRate)
	}
}

func TestComputePayroll_UnknownJobTitle_404(t *testing.T) {
	router := newTestRouter()
	body := api.ComputePayrollRequest{
		JobTitle: "COMANDANTE",
		Days:     []api.DayEntryDTO{{Date: "2026-06-01", In1: "08:00", Out1: "16:00"}},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/payroll/compute", body, false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestComputePayroll_NoValidData_400(t *testing.T) {
	// GIVEN: Every day faulted (missing exits)
	router := newTestRouter()
	body := api.ComputePayrollRequest{
		MonthlySalary: 1140000,
		Days: []api.DayEntryDTO{
			{Date: "2026-06-01", In1: "08:00"},
			{Date: "2026-06-02", In1: "09:00"},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/payroll/compute", body, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp api.ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "no_valid_data" {
		t.Errorf("expected code no_valid_data, got %q", resp.Code)
	}
}

func TestComputePayroll_MissingSalaryAndTitle_400(t *testing.T) {
	router := newTestRouter()
	body := api.ComputePayrollRequest{
		Days: []api.DayEntryDTO{{Date: "2026-06-01", In1: "08:00", Out1: "16:00"}},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/payroll/compute", body, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestValidatePayroll_ReportsFaultsAndWarnings(t *testing.T) {
	router := newTestRouter()
	body := api.ValidatePayrollRequest{
		Days: []api.DayEntryDTO{
			{Date: "2026-06-01", In1: "22:00", Out1: "02:00"}, // warning: midnight
			{Date: "2026-06-02", In1: "08:00"},                // fault: missing exit
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/payroll/validate", body, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp api.ValidatePayrollResponse
	decodeBody(t, rec, &resp)
	if resp.Valid {
		t.Error("expected valid=false with a faulted day")
	}
	if len(resp.Faults) != 1 || resp.Faults[0].Date != "2026-06-02" {
		t.Errorf("expected one fault on 2026-06-02, got %+v", resp.Faults)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", resp.Warnings)
	}
}

// =============================================================================
// ADMIN GATE
// =============================================================================

func TestAdminGate_RejectsMissingOrWrongSecret(t *testing.T) {
	router := newTestRouter()

	// No header
	rec := doJSON(t, router, http.MethodGet, "/api/export", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", rec.Code)
	}

	// Wrong header
	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req.Header.Set(api.AdminSecretHeader, "incorrecto")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong secret, got %d", rr.Code)
	}
}

func TestAdminGate_DisabledWhenNoHashConfigured(t *testing.T) {
	h := api.NewHandler(memory.New())
	router := api.NewRouter(h, "")

	rec := doJSON(t, router, http.MethodGet, "/api/export", nil, false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with admin disabled, got %d", rec.Code)
	}
}

// =============================================================================
// JOB TITLES
// =============================================================================

func TestJobTitles_CRUDOverHTTP(t *testing.T) {
	router := newTestRouter()

	// Create (admin)
	rec := doJSON(t, router, http.MethodPost, "/api/titles",
		api.SaveJobTitleRequest{Name: "SARGENTO", MonthlySalary: 2269299}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created api.JobTitleDTO
	decodeBody(t, rec, &created)

	// Duplicate rejected
	rec = doJSON(t, router, http.MethodPost, "/api/titles",
		api.SaveJobTitleRequest{Name: "SARGENTO", MonthlySalary: 1}, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}

	// List is public
	rec = doJSON(t, router, http.MethodGet, "/api/titles", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing, got %d", rec.Code)
	}
	var titles []api.JobTitleDTO
	decodeBody(t, rec, &titles)
	if len(titles) != 1 {
		t.Fatalf("expected 1 title, got %d", len(titles))
	}

	// Update (admin)
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/titles/%d", created.ID),
		api.SaveJobTitleRequest{Name: "SARGENTO", MonthlySalary: 2300000}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating, got %d: %s", rec.Code, rec.Body.String())
	}

	// Mutations require the admin secret
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/titles/%d", created.ID), nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 deleting without secret, got %d", rec.Code)
	}

	// Delete (admin)
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/titles/%d", created.ID), nil, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting, got %d", rec.Code)
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_DeclareAndUseInComputation(t *testing.T) {
	// GIVEN: Wednesday 2026-06-03 declared a holiday
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/api/holidays",
		api.CreateHolidayRequest{Date: "2026-06-03", Name: "Festivo", Kind: "FIXED"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// WHEN: Computing a daytime shift on that date
	body := api.ComputePayrollRequest{
		MonthlySalary: 1140000,
		Days:          []api.DayEntryDTO{{Date: "2026-06-03", In1: "08:00", Out1: "12:00"}},
	}
	rec = doJSON(t, router, http.MethodPost, "/api/payroll/compute", body, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// THEN: The minutes land in the festive day premium
	var resp api.ComputePayrollResponse
	decodeBody(t, rec, &resp)
	found := false
	for _, line := range resp.Premiums {
		if line.Category == "recargo_diurno_festivo" && line.Minutes == 240 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 240 festive day minutes, got %+v", resp.Premiums)
	}
}

func TestHolidays_InvalidKindRejected(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/api/holidays",
		api.CreateHolidayRequest{Date: "2026-06-03", Name: "Festivo", Kind: "OTRO"}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid kind, got %d", rec.Code)
	}
}

// =============================================================================
// ACCESS LOG
// =============================================================================

func TestAccessLog_RecordListSummarize(t *testing.T) {
	router := newTestRouter()

	// Recording is public (the page ping)
	rec := doJSON(t, router, http.MethodPost, "/api/access", nil, false)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 recording access, got %d", rec.Code)
	}

	// Listing needs the admin secret
	rec = doJSON(t, router, http.MethodGet, "/api/access", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing, got %d", rec.Code)
	}
	var entries []api.AccessEntryDTO
	decodeBody(t, rec, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 access entry, got %d", len(entries))
	}

	// Summarize counts and clears
	rec = doJSON(t, router, http.MethodPost, "/api/access/summary", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 summarizing, got %d", rec.Code)
	}
	var summary api.AccessSummaryResponse
	decodeBody(t, rec, &summary)
	if summary.TotalAccesses != 1 {
		t.Errorf("expected 1 summarized access, got %d", summary.TotalAccesses)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/access", nil, true)
	decodeBody(t, rec, &entries)
	if len(entries) != 0 {
		t.Errorf("expected empty log after summary, got %d entries", len(entries))
	}
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExport_ReturnsDumpWithAttachmentHeader(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/holidays",
		api.CreateHolidayRequest{Date: "2026-12-25", Name: "Navidad", Kind: "FIXED"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/export", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 exporting, got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected a Content-Disposition attachment header")
	}

	var dump struct {
		Holidays []any `json:"festivos"`
	}
	decodeBody(t, rec, &dump)
	if len(dump.Holidays) != 1 {
		t.Errorf("expected 1 exported holiday, got %d", len(dump.Holidays))
	}
}
