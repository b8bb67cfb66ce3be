package api

import (
	"net/http"
)

// login handles POST /api/v1/auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !parseJSON(w, r, &req) {
		return
	}

	user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role, user.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
