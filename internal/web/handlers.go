package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gomical/internal/calendar"
	"gomical/internal/export"
	"gomical/internal/feed"
	"gomical/internal/log"
	"gomical/internal/model"
	"gomical/internal/store"
)

func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	view := s.buildMonthView(s.monthFromQuery(r), true)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "calendar.html", view); err != nil {
		log.Error("render calendar page", err)
	}
}

// handlePrintPage serves the banner-less grid the export pipeline captures.
// The page is fully server-rendered, so data-ready is set immediately.
func (s *Server) handlePrintPage(w http.ResponseWriter, r *http.Request) {
	view := s.buildMonthView(s.monthFromQuery(r), false)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "print.html", view); err != nil {
		log.Error("render print page", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	m := s.monthFromQuery(r)
	out := map[string]string{}
	for _, day := range m.Days() {
		if name, ok := s.holidays.Lookup(day); ok {
			out[calendar.DateKey(day)] = name
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, s.buildDayDetail(day))
}

// handleCategories adds a category: POST {"label": "..."}.
// A blank label is a silent no-op, mirroring the settings panel behavior.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat, added, err := s.store.AddCategory(req.Label)
	if err != nil {
		log.Error("add category", err)
		writeError(w, http.StatusInternalServerError, "failed to save category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"added":    added,
		"category": cat,
		"state":    s.store.Snapshot(),
	})
}

// handleCategoryByID deletes a category: DELETE /api/categories/{id}.
func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing category id")
		return
	}

	switch err := s.store.DeleteCategory(id); {
	case errors.Is(err, store.ErrLastCategory):
		writeError(w, http.StatusConflict, "少なくとも1つの分類が必要です。")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "category not found")
	case err != nil:
		log.Error("delete category", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
	default:
		writeJSON(w, http.StatusOK, s.store.Snapshot())
	}
}

// handleRules mutates a category's rule:
//
//	POST /api/rules/{id}/mode    {"mode": "weekly"}
//	POST /api/rules/{id}/weekday {"day": 3}
//	POST /api/rules/{id}/nth     {"n": 1}
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/rules/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || id == "" {
		writeError(w, http.StatusBadRequest, "expected /api/rules/{id}/{mode|weekday|nth}")
		return
	}

	var req struct {
		Mode string `json:"mode"`
		Day  *int   `json:"day"`
		N    *int   `json:"n"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	switch action {
	case "mode":
		err = s.store.SetMode(id, model.Mode(req.Mode))
	case "weekday":
		if req.Day == nil {
			writeError(w, http.StatusBadRequest, "missing day")
			return
		}
		err = s.store.ToggleWeekday(id, *req.Day)
	case "nth":
		if req.N == nil {
			writeError(w, http.StatusBadRequest, "missing n")
			return
		}
		err = s.store.ToggleNth(id, *req.N)
	default:
		writeError(w, http.StatusBadRequest, "unknown rule action")
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, store.ErrBadValue):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Error("update rule", err, "id", id, "action", action)
		writeError(w, http.StatusInternalServerError, "failed to save rule")
	default:
		writeJSON(w, http.StatusOK, s.store.Snapshot())
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.store.Save(); err != nil {
		log.Error("save state", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.store.ResetAll(); err != nil {
		log.Error("reset state", err)
		writeError(w, http.StatusInternalServerError, "failed to reset settings")
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleExportMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m := s.monthFromQuery(r)
	path, err := s.exporter.ExportMonth(r.Context(), m)
	s.writeExportResult(w, path, err, "PDF出力がタイムアウトしました。もう一度お試しください。")
}

func (s *Server) handleExportYear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	year := s.monthFromQuery(r).Year
	path, err := s.exporter.ExportYear(r.Context(), year)
	s.writeExportResult(w, path, err, "年間PDF出力がタイムアウトしました。もう一度お試しください。")
}

func (s *Server) writeExportResult(w http.ResponseWriter, path string, err error, timeoutMsg string) {
	switch {
	case errors.Is(err, export.ErrBusy):
		writeError(w, http.StatusConflict, "PDF出力を実行中です。")
	case errors.Is(err, export.ErrTimeout):
		log.Error("export timed out", err)
		writeError(w, http.StatusGatewayTimeout, timeoutMsg)
	case err != nil:
		log.Error("export failed", err)
		writeError(w, http.StatusInternalServerError, "PDF の生成中にエラーが発生しました。")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"file": path})
	}
}

func (s *Server) handleExportStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"busy": s.exporter.Busy()})
}

func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	body, err := feed.Build(s.store.Snapshot(), calendar.Today(s.loc))
	if err != nil {
		log.Error("build ics feed", err)
		http.Error(w, "failed to build calendar feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
