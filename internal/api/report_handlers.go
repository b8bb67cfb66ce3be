package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"tenantadmin-backend/internal/service"
)

// createReport handles POST /api/v1/reports
func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var in service.CreateReportInput
	if !parseJSON(w, r, &in) {
		return
	}
	report, err := s.reports.Create(r.Context(), actorFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// getReport handles GET /api/v1/reports/{id}
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.GetByID(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// listReports handles GET /api/v1/reports
func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reports, info, err := s.reports.List(r.Context(), actorFrom(r), service.ListReportsInput{
		CompanyID: q.Get("company_id"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
		Page:      parsePage(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, reports, info)
}

// updateReport handles PATCH /api/v1/reports/{id}
func (s *Server) updateReport(w http.ResponseWriter, r *http.Request) {
	var patch service.UpdateReportPatch
	if !parseJSON(w, r, &patch) {
		return
	}
	report, err := s.reports.Update(r.Context(), actorFrom(r), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// deleteReport handles DELETE /api/v1/reports/{id}
func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.reports.Delete(r.Context(), actorFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setReportStatus handles PUT /api/v1/reports/{id}/status
func (s *Server) setReportStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !parseJSON(w, r, &body) {
		return
	}
	report, err := s.reports.SetStatus(r.Context(), actorFrom(r), mux.Vars(r)["id"], body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// recordReportAccess handles POST /api/v1/reports/{id}/access
func (s *Server) recordReportAccess(w http.ResponseWriter, r *http.Request) {
	count, err := s.reports.IncrementAccessCount(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"access_count": count})
}

// listReportGrantees handles GET /api/v1/reports/{id}/grantees
func (s *Server) listReportGrantees(w http.ResponseWriter, r *http.Request) {
	ids, err := s.reports.Grantees(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"user_ids": ids})
}
