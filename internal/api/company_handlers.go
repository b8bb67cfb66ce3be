package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"tenantadmin-backend/internal/service"
)

// createCompany handles POST /api/v1/companies
func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var in service.CreateCompanyInput
	if !parseJSON(w, r, &in) {
		return
	}
	company, err := s.companies.Create(r.Context(), actorFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

// getCompany handles GET /api/v1/companies/{id}
func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.companies.GetByID(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// listCompanies handles GET /api/v1/companies
func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	companies, info, err := s.companies.List(r.Context(), actorFrom(r), service.ListCompaniesInput{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   parsePage(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, companies, info)
}

// updateCompany handles PATCH /api/v1/companies/{id}
func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) {
	var patch service.UpdateCompanyPatch
	if !parseJSON(w, r, &patch) {
		return
	}
	company, err := s.companies.Update(r.Context(), actorFrom(r), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// deleteCompany handles DELETE /api/v1/companies/{id}
func (s *Server) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := s.companies.Delete(r.Context(), actorFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// assignCompanyAdmin handles POST /api/v1/companies/{id}/admins
func (s *Server) assignCompanyAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !parseJSON(w, r, &req) {
		return
	}
	if err := s.companies.AssignAdmin(r.Context(), actorFrom(r), mux.Vars(r)["id"], req.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listCompanyAdmins handles GET /api/v1/companies/{id}/admins
func (s *Server) listCompanyAdmins(w http.ResponseWriter, r *http.Request) {
	ids, err := s.companies.ListAdmins(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"user_ids": ids})
}

// unassignCompanyAdmin handles DELETE /api/v1/companies/{id}/admins/{user_id}
func (s *Server) unassignCompanyAdmin(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.companies.UnassignAdmin(r.Context(), actorFrom(r), vars["id"], vars["user_id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getCurrentSubscription handles GET /api/v1/companies/{id}/subscription
func (s *Server) getCurrentSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subscription.GetCurrent(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// listSubscriptions handles GET /api/v1/companies/{id}/subscriptions
func (s *Server) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscription.ListByCompany(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}
