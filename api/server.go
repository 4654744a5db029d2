/*
server.go - Router assembly

PURPOSE:
  Wires the handlers into a chi router with the standard middleware stack
  (request IDs, logging, panic recovery, CORS) and splits the API into a
  public surface and an admin surface behind the X-Admin-Secret gate.

ROUTE MAP:
  Public:
    POST   /api/payroll/validate   Validate a period without computing
    POST   /api/payroll/compute    Full allocation run
    GET    /api/titles             List job titles
    GET    /api/holidays           List holidays (?year=)
    POST   /api/access             Record a page access
  Admin (X-Admin-Secret):
    POST   /api/titles             Create job title
    PUT    /api/titles/{id}        Update job title
    DELETE /api/titles/{id}        Delete job title
    POST   /api/holidays           Declare holiday
    DELETE /api/holidays/{date}    Remove holiday
    GET    /api/access             List access log
    POST   /api/access/summary     Count and clear access log
    GET    /api/export             JSON backup of all records

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: AdminOnly middleware
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter assembles the full HTTP surface.
func NewRouter(h *Handler, adminSecretHash string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", AdminSecretHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/validate", h.ValidatePayroll)
			r.Post("/compute", h.ComputePayroll)
		})

		r.Route("/titles", func(r chi.Router) {
			r.Get("/", h.ListJobTitles)
			r.Group(func(r chi.Router) {
				r.Use(AdminOnly(adminSecretHash))
				r.Post("/", h.CreateJobTitle)
				r.Put("/{id}", h.UpdateJobTitle)
				r.Delete("/{id}", h.DeleteJobTitle)
			})
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Group(func(r chi.Router) {
				r.Use(AdminOnly(adminSecretHash))
				r.Post("/", h.CreateHoliday)
				r.Delete("/{date}", h.DeleteHoliday)
			})
		})

		r.Route("/access", func(r chi.Router) {
			r.Post("/", h.RecordAccess)
			r.Group(func(r chi.Router) {
				r.Use(AdminOnly(adminSecretHash))
				r.Get("/", h.ListAccesses)
				r.Post("/summary", h.SummarizeAccesses)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminOnly(adminSecretHash))
			r.Get("/export", h.ExportStore)
		})
	})

	return r
}
