// Package web serves the calendar UI, the print view used by the export
// pipeline, and the JSON API that the settings panel drives.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"gomical/internal/calendar"
	"gomical/internal/config"
	"gomical/internal/log"
	"gomical/internal/store"
)

//go:embed templates
var templateFS embed.FS

// Exporter is the slice of the export pipeline the HTTP surface needs.
type Exporter interface {
	ExportMonth(ctx context.Context, m calendar.Month) (string, error)
	ExportYear(ctx context.Context, year int) (string, error)
	Busy() bool
}

// Server wires the store, holiday lookup and exporter to HTTP.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	holidays holidayLookup
	exporter Exporter
	loc      *time.Location

	mux  *http.ServeMux
	tmpl *template.Template
}

// NewServer constructs a Server. loc is the timezone used for "today".
func NewServer(cfg *config.Config, st *store.Store, holidays holidayLookup, exporter Exporter, loc *time.Location) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		holidays: holidays,
		exporter: exporter,
		loc:      loc,
		mux:      http.NewServeMux(),
		tmpl:     tmpl,
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleCalendarPage)
	s.mux.HandleFunc("/print", s.handlePrintPage)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/calendar.ics", s.handleFeed)

	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/holidays", s.handleHolidays)
	s.mux.HandleFunc("/api/day", s.handleDay)
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.HandleFunc("/api/categories/", s.handleCategoryByID)
	s.mux.HandleFunc("/api/rules/", s.handleRules)
	s.mux.HandleFunc("/api/save", s.handleSave)
	s.mux.HandleFunc("/api/reset", s.handleReset)
	s.mux.HandleFunc("/api/export/month", s.handleExportMonth)
	s.mux.HandleFunc("/api/export/year", s.handleExportYear)
	s.mux.HandleFunc("/api/export/status", s.handleExportStatus)

	// Finished PDFs are downloaded from here.
	s.mux.Handle("/exports/", http.StripPrefix("/exports/",
		http.FileServer(http.Dir(s.cfg.Export.Dir))))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// monthFromQuery parses year/month query params, defaulting to the current
// month. Out-of-range values fall back to the default rather than erroring.
func (s *Server) monthFromQuery(r *http.Request) calendar.Month {
	m := calendar.MonthOf(calendar.Today(s.loc))

	year := parseIntDefault(r.URL.Query().Get("year"), m.Year)
	month := parseIntDefault(r.URL.Query().Get("month"), m.MonthNum)
	if year < 1 || month < 1 || month > 12 {
		return m
	}
	return calendar.Month{Year: year, MonthNum: month}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
