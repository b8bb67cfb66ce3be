package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"tenantadmin-backend/internal/service"
)

// listBilling handles GET /api/v1/billing
func (s *Server) listBilling(w http.ResponseWriter, r *http.Request) {
	recs, info, err := s.billing.List(r.Context(), actorFrom(r), service.ListBillingInput{
		CompanyID: r.URL.Query().Get("company_id"),
		Page:      parsePage(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, recs, info)
}

// getBilling handles GET /api/v1/billing/{id}
func (s *Server) getBilling(w http.ResponseWriter, r *http.Request) {
	rec, err := s.billing.GetByID(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
