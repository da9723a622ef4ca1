package dashboard

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/speedwagon-io/vitaldash/internal/feed"
	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
	"github.com/speedwagon-io/vitaldash/internal/model"
	"github.com/speedwagon-io/vitaldash/internal/status"
)

func (s *Server) normalizedRows() []status.Row {
	rows := s.normalizer.Normalize(status.RowsFromRoster(s.roster))

	if s.metrics != nil {
		tiers := make([]model.Tier, 0, len(rows))
		for _, r := range rows {
			tiers = append(tiers, r.Tier)
		}
		s.metrics.ObserveNormalized(tiers)
	}

	return rows
}

func (s *Server) handleEmployees(w http.ResponseWriter, r *http.Request) {
	page := employeesPage{Title: "Employee Status", Columns: []string{"Name", "Department", "Status"}}
	if s.roster != nil {
		page.Title = s.roster.Title
		page.Columns = s.roster.Columns
	}
	page.Rows = employeeRows(s.normalizedRows())

	s.renderPage(w, "employees", page)
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	table := s.renderer.Load(r.Context())
	s.renderPage(w, "sensors", sensorsPage{Title: "Sensor Readings", Table: table})
}

func (s *Server) handleEmployee(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = UnknownEmployee
	}
	s.renderPage(w, "employee", employeePage{Title: name, Name: name})
}

type employeeJSON struct {
	Cells  []string     `json:"cells"`
	Tier   model.Tier   `json:"tier"`
	Status *status.Cell `json:"status,omitempty"`
}

func (s *Server) handleEmployeesJSON(w http.ResponseWriter, r *http.Request) {
	rows := s.normalizedRows()
	out := make([]employeeJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, employeeJSON{Cells: row.Cells, Tier: row.Tier, Status: row.Status})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type sensorsJSON struct {
	Rows  []feed.RowView `json:"rows"`
	Error string         `json:"error,omitempty"`
}

func (s *Server) handleSensorsJSON(w http.ResponseWriter, r *http.Request) {
	table := s.renderer.Load(r.Context())
	rows := table.Rows
	if rows == nil {
		rows = []feed.RowView{}
	}
	s.writeJSON(w, http.StatusOK, sensorsJSON{Rows: rows, Error: table.Error})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "history is disabled"})
		return
	}

	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	snapshots, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("failed to read history", sl.Err(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read history"})
		return
	}

	s.writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("failed to render page", slog.String("page", name), sl.Err(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", sl.Err(err))
	}
}
