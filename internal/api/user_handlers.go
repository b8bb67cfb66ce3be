package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"tenantadmin-backend/internal/service"
)

// createUser handles POST /api/v1/users
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if !parseJSON(w, r, &in) {
		return
	}
	user, err := s.users.Create(r.Context(), actorFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// getUser handles GET /api/v1/users/{id}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), actorFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// listUsers handles GET /api/v1/users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, info, err := s.users.List(r.Context(), actorFrom(r), service.ListUsersInput{
		CompanyID: q.Get("company_id"),
		Role:      q.Get("role"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
		Page:      parsePage(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, users, info)
}

// updateUser handles PATCH /api/v1/users/{id}
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var patch service.UpdateUserPatch
	if !parseJSON(w, r, &patch) {
		return
	}
	user, err := s.users.Update(r.Context(), actorFrom(r), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// deleteUser handles DELETE /api/v1/users/{id}
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), actorFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// changePassword handles PUT /api/v1/users/{id}/password
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if !parseJSON(w, r, &req) {
		return
	}
	if err := s.users.ChangePassword(r.Context(), actorFrom(r), mux.Vars(r)["id"], req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
