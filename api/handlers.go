/*
handlers.go - HTTP handlers for the payroll API

PURPOSE:
  Implements the HTTP endpoints: payroll validation and computation, job
  title management, the holiday calendar, the access log, and the full
  data export. Handlers translate between DTOs and the engine/store
  domain types and never contain calculation logic themselves.

ERROR MAPPING:
  - validator tag failures        -> 400 invalid_request
  - engine.ErrNoValidData         -> 400 no_valid_data (+ per-day faults)
  - engine.ErrNonPositiveSalary   -> 400 invalid_salary
  - store.Err*NotFound            -> 404 not_found
  - store.ErrDuplicate*           -> 409 conflict
  - anything else                 -> 500 internal

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Route wiring
  - auth.go: Admin gate for mutating record endpoints
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/brigada/payroll-engine/engine"
	"github.com/brigada/payroll-engine/store"
)

const dateLayout = "2006-01-02"

// Handler bundles the dependencies the HTTP layer needs.
type Handler struct {
	store    store.RecordStore
	validate *validator.Validate
}

// NewHandler creates a Handler backed by the given record store.
func NewHandler(st store.RecordStore) *Handler {
	return &Handler{
		store:    st,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// =============================================================================
// JSON HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "cuerpo de la petición inválido")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "la petición no cumple el formato requerido",
			Code:    "invalid_request",
			Details: validationDetails(err),
		})
		return false
	}
	return true
}

// validationDetails flattens validator errors into field: tag strings.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, len(verrs))
	for i, fe := range verrs {
		out[i] = fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	}
	return out
}

// parseDays converts DTO days into engine entries. Date strings already
// passed the datetime tag, so parse errors here mean a handler bug.
func parseDays(days []DayEntryDTO) ([]engine.DayEntry, error) {
	entries := make([]engine.DayEntry, len(days))
	for i, d := range days {
		date, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", d.Date, err)
		}
		entries[i] = engine.DayEntry{
			Date: date,
			In1:  d.In1,
			Out1: d.Out1,
			In2:  d.In2,
			Out2: d.Out2,
		}
	}
	return entries, nil
}

// =============================================================================
// PAYROLL - Validation and computation
// =============================================================================

// ValidatePayroll runs period validation only and reports faults/warnings.
// POST /api/payroll/validate
func (h *Handler) ValidatePayroll(w http.ResponseWriter, r *http.Request) {
	var req ValidatePayrollRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	entries, err := parseDays(req.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	days, faults, err := engine.ValidatePeriod(entries)
	resp := ValidatePayrollResponse{
		Valid:  err == nil && len(faults) == 0,
		Faults: toDayFaultDTOs(faults),
	}
	for _, d := range days {
		resp.Warnings = append(resp.Warnings, d.Warnings...)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ComputePayroll validates the period and runs the full minute allocation.
// POST /api/payroll/compute
func (h *Handler) ComputePayroll(w http.ResponseWriter, r *http.Request) {
	var req ComputePayrollRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	entries, err := parseDays(req.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	salary, ok := h.resolveSalary(w, r, req)
	if !ok {
		return
	}

	days, faults, err := engine.ValidatePeriod(entries)
	if err != nil {
		if errors.Is(err, engine.ErrNoValidData) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Debe ingresar al menos un par de hora de entrada y salida para realizar el cálculo.",
				Code:    "no_valid_data",
				Details: toDayFaultDTOs(faults),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "error validando el período")
		return
	}

	records, err := h.store.ListHolidays(r.Context(), 0)
	if err != nil {
		log.Printf("api: listing holidays: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error consultando los festivos")
		return
	}
	cal := engine.NewCalendar(store.ToEngineHolidays(records))

	res, err := engine.Allocate(days, salary, cal)
	if err != nil {
		if errors.Is(err, engine.ErrNonPositiveSalary) {
			writeError(w, http.StatusBadRequest, "invalid_salary", "el salario debe ser mayor que cero")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "error calculando el período")
		return
	}

	writeJSON(w, http.StatusOK, buildComputeResponse(res, days, faults))
}

// resolveSalary picks the salary from the named job title or the inline
// number. The validator guarantees at least one is present.
func (h *Handler) resolveSalary(w http.ResponseWriter, r *http.Request, req ComputePayrollRequest) (decimal.Decimal, bool) {
	if req.JobTitle != "" {
		title, err := h.store.GetJobTitle(r.Context(), req.JobTitle)
		if err != nil {
			if errors.Is(err, store.ErrJobTitleNotFound) {
				writeError(w, http.StatusNotFound, "not_found", "cargo no encontrado: "+req.JobTitle)
				return decimal.Zero, false
			}
			log.Printf("api: resolving job title %q: %v", req.JobTitle, err)
			writeError(w, http.StatusInternalServerError, "internal", "error consultando el cargo")
			return decimal.Zero, false
		}
		return title.MonthlySalary, true
	}
	return decimal.NewFromFloat(req.MonthlySalary), true
}

func buildComputeResponse(res engine.Result, days []engine.ValidatedDay, faults []engine.DayFault) ComputePayrollResponse {
	summary := engine.Summarize(res, res.Rates.Minute)

	compAmounts := make(map[engine.Category]decimal.Decimal, len(summary.Compensatory))
	for cat, line := range summary.Compensatory {
		compAmounts[cat] = line.Value
	}

	resp := ComputePayrollResponse{
		TotalMinutes:    res.Accumulator.TotalMinutes,
		BaselineMinutes: engine.BaselineMinutes,
		HourlyRate:      res.Rates.Hourly.InexactFloat64(),
		CapAmount:       res.Rates.Cap.InexactFloat64(),

		Premiums:     toCategoryLines(engine.PremiumCategories, res.Categories, summary.PerCategory),
		Overtime:     toCategoryLines(engine.OvertimeCategories, res.Categories, summary.PerCategory),
		Compensatory: toCategoryLines(engine.OvertimeCategories, res.Compensatory, compAmounts),

		TotalPremiums:       summary.TotalPremiums.InexactFloat64(),
		TotalOvertimePaid:   summary.TotalOvertimePaid.InexactFloat64(),
		TotalPay:            summary.TotalPay.InexactFloat64(),
		CompensatoryMinutes: summary.CompensatoryMinutes.InexactFloat64(),
		CompensatoryValue:   summary.CompensatoryValue.InexactFloat64(),

		CapReached:  res.Accumulator.CapReached,
		SkippedDays: toDayFaultDTOs(faults),
	}
	if res.Accumulator.CapReached {
		resp.CapReachedAt = res.Accumulator.CapReachedAt.Format("2006-01-02 15:04")
	}

	resp.Snapshots = make([]DaySnapshotDTO, len(res.Snapshots))
	for i, snap := range res.Snapshots {
		cats := make(map[string]float64, len(snap.Categories))
		for cat, minutes := range snap.Categories {
			cats[string(cat)] = minutes.InexactFloat64()
		}
		resp.Snapshots[i] = DaySnapshotDTO{
			Date:                   snap.Date.Format(dateLayout),
			CumulativeMinutes:      snap.CumulativeMinutes,
			CumulativeExtraMinutes: snap.CumulativeExtraMinutes,
			ExtraPayAccrued:        snap.ExtraPayAccrued.InexactFloat64(),
			BaselineReached:        snap.BaselineReached,
			CapReached:             snap.CapReached,
			Categories:             cats,
		}
	}

	for _, d := range days {
		resp.Warnings = append(resp.Warnings, d.Warnings...)
	}
	return resp
}

// =============================================================================
// JOB TITLES
// =============================================================================

// ListJobTitles returns all job titles ordered by ID.
// GET /api/titles
func (h *Handler) ListJobTitles(w http.ResponseWriter, r *http.Request) {
	titles, err := h.store.ListJobTitles(r.Context())
	if err != nil {
		log.Printf("api: listing job titles: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error consultando los cargos")
		return
	}
	dtos := make([]JobTitleDTO, len(titles))
	for i, t := range titles {
		dtos[i] = toJobTitleDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateJobTitle adds a new rank with its salary.
// POST /api/titles (admin)
func (h *Handler) CreateJobTitle(w http.ResponseWriter, r *http.Request) {
	var req SaveJobTitleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	id, err := h.store.CreateJobTitle(r.Context(), store.JobTitle{
		Name:          req.Name,
		MonthlySalary: decimal.NewFromFloat(req.MonthlySalary),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateJobTitle) {
			writeError(w, http.StatusConflict, "conflict", "ya existe un cargo con ese nombre")
			return
		}
		log.Printf("api: creating job title: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error creando el cargo")
		return
	}
	writeJSON(w, http.StatusCreated, JobTitleDTO{ID: id, Name: req.Name, MonthlySalary: req.MonthlySalary})
}

// UpdateJobTitle replaces a title's name and salary.
// PUT /api/titles/{id} (admin)
func (h *Handler) UpdateJobTitle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "id inválido")
		return
	}

	var req SaveJobTitleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err = h.store.UpdateJobTitle(r.Context(), store.JobTitle{
		ID:            id,
		Name:          req.Name,
		MonthlySalary: decimal.NewFromFloat(req.MonthlySalary),
	})
	switch {
	case errors.Is(err, store.ErrJobTitleNotFound):
		writeError(w, http.StatusNotFound, "not_found", "cargo no encontrado")
	case errors.Is(err, store.ErrDuplicateJobTitle):
		writeError(w, http.StatusConflict, "conflict", "ya existe un cargo con ese nombre")
	case err != nil:
		log.Printf("api: updating job title %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal", "error actualizando el cargo")
	default:
		writeJSON(w, http.StatusOK, JobTitleDTO{ID: id, Name: req.Name, MonthlySalary: req.MonthlySalary})
	}
}

// DeleteJobTitle removes a title by ID.
// DELETE /api/titles/{id} (admin)
func (h *Handler) DeleteJobTitle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "id inválido")
		return
	}

	if err := h.store.DeleteJobTitle(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrJobTitleNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "cargo no encontrado")
			return
		}
		log.Printf("api: deleting job title %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal", "error eliminando el cargo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// ListHolidays returns declared holidays, optionally filtered by ?year=.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "año inválido")
			return
		}
		year = parsed
	}

	records, err := h.store.ListHolidays(r.Context(), year)
	if err != nil {
		log.Printf("api: listing holidays: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error consultando los festivos")
		return
	}
	dtos := make([]HolidayDTO, len(records))
	for i, rec := range records {
		dtos[i] = toHolidayDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday declares a holiday date.
// POST /api/holidays (admin)
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "fecha inválida")
		return
	}

	rec := store.HolidayRecord{Date: date, Name: req.Name, Kind: engine.HolidayKind(req.Kind)}
	if err := h.store.CreateHoliday(r.Context(), rec); err != nil {
		if errors.Is(err, store.ErrDuplicateHoliday) {
			writeError(w, http.StatusConflict, "conflict", "ya existe un festivo en esa fecha")
			return
		}
		log.Printf("api: creating holiday: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error creando el festivo")
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(rec))
}

// DeleteHoliday removes the holiday on a date.
// DELETE /api/holidays/{date} (admin)
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "fecha inválida")
		return
	}

	if err := h.store.DeleteHoliday(r.Context(), date); err != nil {
		if errors.Is(err, store.ErrHolidayNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "festivo no encontrado")
			return
		}
		log.Printf("api: deleting holiday %s: %v", date.Format(dateLayout), err)
		writeError(w, http.StatusInternalServerError, "internal", "error eliminando el festivo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ACCESS LOG
// =============================================================================

// RecordAccess logs the caller's IP. The frontend pings this on page load.
// POST /api/access
func (h *Handler) RecordAccess(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RecordAccess(r.Context(), clientIP(r)); err != nil {
		log.Printf("api: recording access: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error registrando el acceso")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAccesses returns the access log, newest first.
// GET /api/access (admin)
func (h *Handler) ListAccesses(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListAccesses(r.Context())
	if err != nil {
		log.Printf("api: listing accesses: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error consultando el registro de accesos")
		return
	}
	dtos := make([]AccessEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAccessEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SummarizeAccesses counts and clears the access log in one step.
// POST /api/access/summary (admin)
func (h *Handler) SummarizeAccesses(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.ClearAccesses(r.Context())
	if err != nil {
		log.Printf("api: summarizing accesses: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error resumiendo el registro de accesos")
		return
	}
	writeJSON(w, http.StatusOK, AccessSummaryResponse{
		TotalAccesses: n,
		Message:       fmt.Sprintf("se resumieron %d accesos", n),
	})
}

// clientIP prefers X-Forwarded-For (first hop) over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportStore dumps all stored records as a JSON backup.
// GET /api/export (admin)
func (h *Handler) ExportStore(w http.ResponseWriter, r *http.Request) {
	dump, err := h.store.Export(r.Context())
	if err != nil {
		log.Printf("api: exporting store: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error exportando los datos")
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=payroll-export-%s.json", time.Now().Format(dateLayout)))
	writeJSON(w, http.StatusOK, dump)
}
